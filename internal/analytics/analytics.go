package analytics

import (
	"context"
	"log/slog"
	"sort"

	"aurelion/internal/config"
	"aurelion/pkg/contracts/domain"
)

// MonthlyTicket is the average ticket for one calendar month.
type MonthlyTicket struct {
	Month         string  `json:"month"` // "2025-01"
	Sales         int     `json:"sales"`
	Revenue       float64 `json:"revenue"`
	AverageTicket float64 `json:"average_ticket"`
}

// ProductRank is one entry of the product ranking.
type ProductRank struct {
	ProductID int     `json:"id_producto"`
	Name      string  `json:"nombre_producto"`
	Category  string  `json:"categoria"`
	Quantity  int     `json:"cantidad"`
	Revenue   float64 `json:"importe"`
}

// PaymentShare is the revenue share of one payment method.
type PaymentShare struct {
	Method  domain.PaymentMethod `json:"medio_pago"`
	Channel domain.Channel       `json:"canal"`
	Sales   int                  `json:"ventas"`
	Revenue float64              `json:"importe"`
	Share   float64              `json:"participacion"`
}

// Summary aggregates every KPI the pipeline reports on.
type Summary struct {
	Lines          int             `json:"lines"`
	Sales          int             `json:"sales"`
	Clients        int             `json:"clients"`
	Products       int             `json:"products"`
	TotalRevenue   float64         `json:"total_revenue"`
	AverageTicket  float64         `json:"average_ticket"`
	MonthlyTickets []MonthlyTicket `json:"monthly_tickets"`
	TopProducts    []ProductRank   `json:"top_products"`
	PaymentShares  []PaymentShare  `json:"payment_shares"`
	Correlations   Correlations    `json:"correlations"`
	ProductsABC    *ABCResult      `json:"products_abc"`
	ClientsABC     *ABCResult      `json:"clients_abc"`
}

// Engine computes the KPIs over the integrated fact table.
type Engine struct {
	cfg    config.AnalyticsConfig
	logger *slog.Logger
}

// NewEngine creates an analytics engine.
func NewEngine(cfg config.AnalyticsConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Integrate joins every sale line with its sale header and catalog
// entry into the fact table the KPIs run on. Lines without a matching
// sale or product are skipped; cleaning removes those beforehand.
func Integrate(dataset *domain.Dataset) []domain.EnrichedLine {
	salesByID := make(map[int]domain.Sale, len(dataset.Sales))
	for _, s := range dataset.Sales {
		salesByID[s.ID] = s
	}
	productsByID := make(map[int]domain.Product, len(dataset.Products))
	for _, p := range dataset.Products {
		productsByID[p.ID] = p
	}

	lines := make([]domain.EnrichedLine, 0, len(dataset.SaleLines))
	for _, sl := range dataset.SaleLines {
		sale, ok := salesByID[sl.SaleID]
		if !ok {
			continue
		}
		product, ok := productsByID[sl.ProductID]
		if !ok {
			continue
		}
		name := sl.ProductName
		if name == "" {
			name = product.Name
		}
		lines = append(lines, domain.EnrichedLine{
			SaleID:        sale.ID,
			Date:          sale.Date,
			ClientID:      sale.ClientID,
			PaymentMethod: sale.PaymentMethod,
			Channel:       sale.Channel,
			ProductID:     product.ID,
			ProductName:   name,
			Category:      product.Category,
			Quantity:      sl.Quantity,
			UnitPrice:     sl.UnitPrice,
			Amount:        sl.Amount,
		})
	}
	return lines
}

// MonthlyAverageTicket groups sales by calendar month and returns the
// average ticket per month, ordered chronologically. The ticket is the
// total of a sale's lines; months with no sales simply do not appear.
func (e *Engine) MonthlyAverageTicket(lines []domain.EnrichedLine) []MonthlyTicket {
	type monthAgg struct {
		revenue float64
		sales   map[int]bool
	}
	months := make(map[string]*monthAgg)
	for _, l := range lines {
		key := l.Date.Format("2006-01")
		agg, ok := months[key]
		if !ok {
			agg = &monthAgg{sales: make(map[int]bool)}
			months[key] = agg
		}
		agg.revenue += l.Amount
		agg.sales[l.SaleID] = true
	}

	out := make([]MonthlyTicket, 0, len(months))
	for month, agg := range months {
		ticket := MonthlyTicket{
			Month:   month,
			Sales:   len(agg.sales),
			Revenue: agg.revenue,
		}
		if ticket.Sales > 0 {
			ticket.AverageTicket = ticket.Revenue / float64(ticket.Sales)
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TopProducts returns the n products with the highest revenue, ties
// broken by quantity then name for stable output.
func (e *Engine) TopProducts(lines []domain.EnrichedLine, n int) []ProductRank {
	byProduct := make(map[int]*ProductRank)
	for _, l := range lines {
		rank, ok := byProduct[l.ProductID]
		if !ok {
			rank = &ProductRank{ProductID: l.ProductID, Name: l.ProductName, Category: l.Category}
			byProduct[l.ProductID] = rank
		}
		rank.Quantity += l.Quantity
		rank.Revenue += l.Amount
	}

	out := make([]ProductRank, 0, len(byProduct))
	for _, rank := range byProduct {
		out = append(out, *rank)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PaymentMethodShares returns revenue and sale counts per payment
// method with each method's share of total revenue, ordered by revenue
// descending.
func (e *Engine) PaymentMethodShares(lines []domain.EnrichedLine) []PaymentShare {
	type methodAgg struct {
		channel domain.Channel
		revenue float64
		sales   map[int]bool
	}
	byMethod := make(map[domain.PaymentMethod]*methodAgg)
	total := 0.0
	for _, l := range lines {
		agg, ok := byMethod[l.PaymentMethod]
		if !ok {
			agg = &methodAgg{channel: l.Channel, sales: make(map[int]bool)}
			byMethod[l.PaymentMethod] = agg
		}
		agg.revenue += l.Amount
		agg.sales[l.SaleID] = true
		total += l.Amount
	}

	out := make([]PaymentShare, 0, len(byMethod))
	for method, agg := range byMethod {
		share := PaymentShare{
			Method:  method,
			Channel: agg.channel,
			Sales:   len(agg.sales),
			Revenue: agg.revenue,
		}
		if total > 0 {
			share.Share = agg.revenue / total
		}
		out = append(out, share)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// ProductsABC classifies products by revenue contribution.
func (e *Engine) ProductsABC(lines []domain.EnrichedLine) *ABCResult {
	byProduct := make(map[int]*ABCItem)
	for _, l := range lines {
		item, ok := byProduct[l.ProductID]
		if !ok {
			item = &ABCItem{ID: l.ProductID, Label: l.ProductName}
			byProduct[l.ProductID] = item
		}
		item.Contribution += l.Amount
	}
	return ClassifyABC(collectItems(byProduct), e.cfg.ABCClassA, e.cfg.ABCClassB)
}

// ClientsABC classifies clients by revenue contribution. Labels carry
// the client ID only; names are joined at export time when needed.
func (e *Engine) ClientsABC(lines []domain.EnrichedLine) *ABCResult {
	byClient := make(map[int]*ABCItem)
	for _, l := range lines {
		item, ok := byClient[l.ClientID]
		if !ok {
			item = &ABCItem{ID: l.ClientID}
			byClient[l.ClientID] = item
		}
		item.Contribution += l.Amount
	}
	return ClassifyABC(collectItems(byClient), e.cfg.ABCClassA, e.cfg.ABCClassB)
}

func collectItems(byID map[int]*ABCItem) []ABCItem {
	items := make([]ABCItem, 0, len(byID))
	for _, item := range byID {
		items = append(items, *item)
	}
	return items
}

// Summarize runs every KPI over the cleaned dataset and returns the
// combined summary.
func (e *Engine) Summarize(ctx context.Context, dataset *domain.Dataset) *Summary {
	lines := Integrate(dataset)

	summary := &Summary{
		Lines:    len(lines),
		Sales:    len(dataset.Sales),
		Clients:  len(dataset.Clients),
		Products: len(dataset.Products),
	}
	// The average ticket divides by the sales present in the fact
	// table, the same denominator the monthly breakdown uses.
	distinctSales := make(map[int]bool)
	for _, l := range lines {
		summary.TotalRevenue += l.Amount
		distinctSales[l.SaleID] = true
	}
	if len(distinctSales) > 0 {
		summary.AverageTicket = summary.TotalRevenue / float64(len(distinctSales))
	}

	summary.MonthlyTickets = e.MonthlyAverageTicket(lines)
	summary.TopProducts = e.TopProducts(lines, e.cfg.TopProducts)
	summary.PaymentShares = e.PaymentMethodShares(lines)
	summary.Correlations = ComputeCorrelations(lines)
	summary.ProductsABC = e.ProductsABC(lines)
	summary.ClientsABC = e.ClientsABC(lines)

	e.logger.InfoContext(ctx, "analytics computed",
		slog.Int("lines", summary.Lines),
		slog.Float64("total_revenue", summary.TotalRevenue),
		slog.Float64("average_ticket", summary.AverageTicket),
		slog.Int("months", len(summary.MonthlyTickets)),
		slog.Int("top_products", len(summary.TopProducts)))

	return summary
}
