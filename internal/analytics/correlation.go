package analytics

import (
	"math"

	"aurelion/pkg/contracts/domain"
)

// Correlations holds the Pearson coefficients between the numeric
// fields of the fact table. NaN-free: pairs with zero variance report 0.
type Correlations struct {
	QuantityUnitPrice float64 `json:"quantity_unit_price"`
	QuantityAmount    float64 `json:"quantity_amount"`
	UnitPriceAmount   float64 `json:"unit_price_amount"`
}

// ComputeCorrelations returns the pairwise Pearson correlations over
// quantity, unit price and amount.
func ComputeCorrelations(lines []domain.EnrichedLine) Correlations {
	n := len(lines)
	quantities := make([]float64, n)
	prices := make([]float64, n)
	amounts := make([]float64, n)
	for i, l := range lines {
		quantities[i] = float64(l.Quantity)
		prices[i] = l.UnitPrice
		amounts[i] = l.Amount
	}
	return Correlations{
		QuantityUnitPrice: pearson(quantities, prices),
		QuantityAmount:    pearson(quantities, amounts),
		UnitPriceAmount:   pearson(prices, amounts),
	}
}

// pearson computes the Pearson correlation coefficient. Fewer than two
// observations or a constant series yields 0.
func pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}

	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
