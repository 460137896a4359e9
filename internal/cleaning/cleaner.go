// Package cleaning applies the cleaning rules to a validated dataset:
// string normalization, primary-key dedupe, dropping rows with invalid
// fields or broken references, amount recomputation and channel
// derivation from the payment method.
package cleaning

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"aurelion/internal/config"
	"aurelion/pkg/contracts/domain"
)

// Stats records before/after row counts for one table.
type Stats struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Dropped returns the number of discarded rows.
func (s Stats) Dropped() int {
	return s.Before - s.After
}

// DropRatio returns the discarded fraction, 0 for an empty table.
func (s Stats) DropRatio() float64 {
	if s.Before == 0 {
		return 0
	}
	return float64(s.Dropped()) / float64(s.Before)
}

// Result is the outcome of the cleaning stage.
type Result struct {
	Dataset *domain.Dataset
	Stats   map[domain.TableName]Stats
	// AmountsFixed counts sale lines whose amount disagreed with
	// quantity × unit price and was recomputed.
	AmountsFixed int
	// ChannelsDerived counts sales whose channel was filled or fixed
	// from the payment method lookup.
	ChannelsDerived int
}

// Cleaner runs the cleaning stage.
type Cleaner struct {
	cfg    config.ValidationConfig
	logger *slog.Logger
}

// New creates a Cleaner. The validation thresholds are reused so the
// drop rules match what validation reported.
func New(cfg config.ValidationConfig, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{cfg: cfg, logger: logger}
}

// amountTolerance is the allowed absolute disagreement between the
// recorded amount and quantity × unit price.
const amountTolerance = 0.01

// Clean applies all cleaning rules and returns a new dataset. The input
// dataset is not modified.
func (c *Cleaner) Clean(ctx context.Context, dataset *domain.Dataset) *Result {
	result := &Result{
		Dataset: &domain.Dataset{Sources: dataset.Sources},
		Stats:   make(map[domain.TableName]Stats),
	}

	result.Dataset.Products = c.cleanProducts(dataset.Products, result)
	result.Dataset.Clients = c.cleanClients(dataset.Clients, result)
	result.Dataset.Sales = c.cleanSales(dataset.Sales, result)

	// References are checked against the already-cleaned parents so
	// lines pointing at dropped sales or products go too.
	result.Dataset.SaleLines = c.cleanSaleLines(dataset.SaleLines, result.Dataset, result)
	result.Dataset.Sales = c.dropSalesWithoutClient(result.Dataset, result)

	for table, stats := range result.Stats {
		if stats.Dropped() > 0 {
			c.logger.WarnContext(ctx, "rows discarded during cleaning",
				slog.String("table", string(table)),
				slog.Int("dropped", stats.Dropped()),
				slog.Float64("ratio", stats.DropRatio()))
		}
	}
	c.logger.InfoContext(ctx, "cleaning finished",
		slog.Int("amounts_fixed", result.AmountsFixed),
		slog.Int("channels_derived", result.ChannelsDerived))

	return result
}

func (c *Cleaner) cleanProducts(products []domain.Product, result *Result) []domain.Product {
	stats := Stats{Before: len(products)}

	byID := make(map[int]int) // id -> index in out, last write wins
	var out []domain.Product
	for _, p := range products {
		p.Name = normalizeText(p.Name)
		p.Category = strings.ToLower(normalizeText(p.Category))

		if p.ID <= 0 || p.Name == "" || p.UnitPrice < 0 || p.UnitPrice > c.cfg.MaxUnitPrice {
			continue
		}
		if i, seen := byID[p.ID]; seen {
			out[i] = p
			continue
		}
		byID[p.ID] = len(out)
		out = append(out, p)
	}

	stats.After = len(out)
	result.Stats[domain.TableProducts] = stats
	return out
}

func (c *Cleaner) cleanClients(clients []domain.Client, result *Result) []domain.Client {
	stats := Stats{Before: len(clients)}

	byID := make(map[int]int)
	var out []domain.Client
	for _, cl := range clients {
		cl.Name = normalizeText(cl.Name)
		cl.Email = strings.ToLower(strings.TrimSpace(cl.Email))
		cl.City = normalizeText(cl.City)

		if cl.ID <= 0 || cl.Name == "" {
			continue
		}
		if i, seen := byID[cl.ID]; seen {
			out[i] = cl
			continue
		}
		byID[cl.ID] = len(out)
		out = append(out, cl)
	}

	stats.After = len(out)
	result.Stats[domain.TableClients] = stats
	return out
}

func (c *Cleaner) cleanSales(sales []domain.Sale, result *Result) []domain.Sale {
	stats := Stats{Before: len(sales)}
	minDate, maxDate := c.cfg.DateWindow()

	byID := make(map[int]int)
	var out []domain.Sale
	for _, s := range sales {
		s.PaymentMethod = domain.PaymentMethod(strings.ToLower(strings.TrimSpace(string(s.PaymentMethod))))

		if s.ID <= 0 || s.Date.IsZero() || s.ClientID <= 0 || !s.PaymentMethod.IsValid() {
			continue
		}
		if !minDate.IsZero() && s.Date.Before(minDate) {
			continue
		}
		// The window end is inclusive through the whole day, matching
		// the validator's bound.
		if !maxDate.IsZero() && !s.Date.Before(maxDate.AddDate(0, 0, 1)) {
			continue
		}

		if derived := DeriveChannel(s.PaymentMethod); s.Channel != derived {
			s.Channel = derived
			result.ChannelsDerived++
		}

		if i, seen := byID[s.ID]; seen {
			out[i] = s
			continue
		}
		byID[s.ID] = len(out)
		out = append(out, s)
	}

	stats.After = len(out)
	result.Stats[domain.TableSales] = stats
	return out
}

func (c *Cleaner) cleanSaleLines(lines []domain.SaleLine, cleaned *domain.Dataset, result *Result) []domain.SaleLine {
	stats := Stats{Before: len(lines)}

	saleIDs := make(map[int]bool, len(cleaned.Sales))
	for _, s := range cleaned.Sales {
		saleIDs[s.ID] = true
	}
	productIDs := make(map[int]bool, len(cleaned.Products))
	for _, p := range cleaned.Products {
		productIDs[p.ID] = true
	}

	var out []domain.SaleLine
	for _, sl := range lines {
		sl.ProductName = normalizeText(sl.ProductName)

		if sl.SaleID <= 0 || sl.ProductID <= 0 || sl.Quantity <= 0 ||
			sl.UnitPrice < 0 || sl.UnitPrice > c.cfg.MaxUnitPrice {
			continue
		}
		if !saleIDs[sl.SaleID] || !productIDs[sl.ProductID] {
			continue
		}

		expected := float64(sl.Quantity) * sl.UnitPrice
		if math.Abs(sl.Amount-expected) > amountTolerance {
			sl.Amount = expected
			result.AmountsFixed++
		}

		out = append(out, sl)
	}

	stats.After = len(out)
	result.Stats[domain.TableSaleLines] = stats
	return out
}

// dropSalesWithoutClient removes sales whose client no longer exists
// after client cleaning. Runs after sale lines so the line drop counts
// already account for these sales' lines via the sale reference check.
func (c *Cleaner) dropSalesWithoutClient(cleaned *domain.Dataset, result *Result) []domain.Sale {
	clientIDs := make(map[int]bool, len(cleaned.Clients))
	for _, cl := range cleaned.Clients {
		clientIDs[cl.ID] = true
	}

	var out []domain.Sale
	dropped := map[int]bool{}
	for _, s := range cleaned.Sales {
		if !clientIDs[s.ClientID] {
			dropped[s.ID] = true
			continue
		}
		out = append(out, s)
	}

	if len(dropped) > 0 {
		var lines []domain.SaleLine
		for _, sl := range cleaned.SaleLines {
			if !dropped[sl.SaleID] {
				lines = append(lines, sl)
			}
		}
		stats := result.Stats[domain.TableSaleLines]
		stats.After = len(lines)
		result.Stats[domain.TableSaleLines] = stats
		cleaned.SaleLines = lines
	}

	stats := result.Stats[domain.TableSales]
	stats.After = len(out)
	result.Stats[domain.TableSales] = stats
	return out
}

// normalizeText trims whitespace and collapses inner runs of spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
