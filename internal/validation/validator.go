// Package validation checks the loaded dataset against field-level
// constraints and referential integrity before cleaning.
//
// Field issues never abort the run; they are reported and the cleaning
// stage drops the offending rows. Referential integrity is tolerant up
// to the configured orphan ratio and aborts beyond it.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"aurelion/internal/config"
	apperrors "aurelion/internal/errors"
	"aurelion/pkg/contracts/domain"
)

// Issue describes a single invalid field on a single row.
type Issue struct {
	Table  domain.TableName `json:"table"`
	Row    int              `json:"row"`
	Field  string           `json:"field"`
	Reason string           `json:"reason"`
}

// RelationStats reports referential integrity for one relation.
type RelationStats struct {
	Relation string  `json:"relation"`
	Total    int     `json:"total"`
	Orphans  int     `json:"orphans"`
	Ratio    float64 `json:"ratio"`
}

// Report is the outcome of the validation stage.
type Report struct {
	Issues    []Issue                    `json:"issues"`
	Relations map[string]RelationStats   `json:"relations"`
	IssueRows map[domain.TableName][]int `json:"-"`
}

// IssueCount returns the number of field issues for a table.
func (r *Report) IssueCount(table domain.TableName) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Table == table {
			n++
		}
	}
	return n
}

// Validator runs the validation stage.
type Validator struct {
	cfg      config.ValidationConfig
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a Validator with the given thresholds.
func New(cfg config.ValidationConfig, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

// Check validates the dataset and returns the report. The returned
// error is non-nil only when an orphan ratio exceeds the configured
// tolerance; plain field issues are reported but do not fail the stage.
func (v *Validator) Check(ctx context.Context, dataset *domain.Dataset) (*Report, error) {
	report := &Report{
		Relations: make(map[string]RelationStats),
		IssueRows: make(map[domain.TableName][]int),
	}

	v.checkProducts(dataset.Products, report)
	v.checkClients(dataset.Clients, report)
	v.checkSales(dataset.Sales, report)
	v.checkSaleLines(dataset.SaleLines, report)

	v.checkIntegrity(dataset, report)

	v.logger.InfoContext(ctx, "validation finished",
		slog.Int("field_issues", len(report.Issues)),
		slog.Int("relations", len(report.Relations)))

	for _, stats := range report.Relations {
		if stats.Ratio > v.cfg.MaxOrphanRatio {
			return report, apperrors.NewIntegrityError(fmt.Sprintf(
				"relation %s has %d orphans out of %d rows (%.1f%%), above the %.1f%% tolerance",
				stats.Relation, stats.Orphans, stats.Total, stats.Ratio*100, v.cfg.MaxOrphanRatio*100))
		}
		if stats.Orphans > 0 {
			v.logger.WarnContext(ctx, "referential orphans within tolerance, cleaning will drop them",
				slog.String("relation", stats.Relation),
				slog.Int("orphans", stats.Orphans))
		}
	}

	return report, nil
}

func (v *Validator) addIssue(report *Report, table domain.TableName, row int, field, reason string) {
	report.Issues = append(report.Issues, Issue{Table: table, Row: row, Field: field, Reason: reason})
	rows := report.IssueRows[table]
	if len(rows) == 0 || rows[len(rows)-1] != row {
		report.IssueRows[table] = append(rows, row)
	}
}

func (v *Validator) checkProducts(products []domain.Product, report *Report) {
	for i, p := range products {
		if err := v.validate.Struct(p); err != nil {
			v.addStructIssues(report, domain.TableProducts, i, err)
		}
		if p.UnitPrice > v.cfg.MaxUnitPrice {
			v.addIssue(report, domain.TableProducts, i, "precio_unitario",
				fmt.Sprintf("above maximum %0.2f", v.cfg.MaxUnitPrice))
		}
	}
}

func (v *Validator) checkClients(clients []domain.Client, report *Report) {
	for i, c := range clients {
		if err := v.validate.Struct(c); err != nil {
			v.addStructIssues(report, domain.TableClients, i, err)
		}
	}
}

func (v *Validator) checkSales(sales []domain.Sale, report *Report) {
	minDate, maxDate := v.cfg.DateWindow()
	for i, s := range sales {
		if err := v.validate.Struct(s); err != nil {
			v.addStructIssues(report, domain.TableSales, i, err)
		}
		if !s.PaymentMethod.IsValid() {
			v.addIssue(report, domain.TableSales, i, "medio_pago",
				fmt.Sprintf("unknown payment method %q", s.PaymentMethod))
		}
		if s.Date.IsZero() {
			continue // already reported by the struct rules
		}
		if !minDate.IsZero() && s.Date.Before(minDate) {
			v.addIssue(report, domain.TableSales, i, "fecha",
				fmt.Sprintf("before window start %s", minDate.Format("2006-01-02")))
		}
		if !maxDate.IsZero() && s.Date.After(maxDate.Add(24*time.Hour-time.Nanosecond)) {
			v.addIssue(report, domain.TableSales, i, "fecha",
				fmt.Sprintf("after window end %s", maxDate.Format("2006-01-02")))
		}
	}
}

func (v *Validator) checkSaleLines(lines []domain.SaleLine, report *Report) {
	for i, sl := range lines {
		if err := v.validate.Struct(sl); err != nil {
			v.addStructIssues(report, domain.TableSaleLines, i, err)
		}
		if sl.UnitPrice > v.cfg.MaxUnitPrice {
			v.addIssue(report, domain.TableSaleLines, i, "precio_unitario",
				fmt.Sprintf("above maximum %0.2f", v.cfg.MaxUnitPrice))
		}
	}
}

func (v *Validator) addStructIssues(report *Report, table domain.TableName, row int, err error) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		v.addIssue(report, table, row, "", err.Error())
		return
	}
	for _, verr := range verrs {
		v.addIssue(report, table, row, verr.Field(),
			fmt.Sprintf("failed %s constraint", verr.Tag()))
	}
}

// checkIntegrity verifies that sale lines reference existing sales and
// products, and sales reference existing clients.
func (v *Validator) checkIntegrity(dataset *domain.Dataset, report *Report) {
	saleIDs := make(map[int]bool, len(dataset.Sales))
	for _, s := range dataset.Sales {
		saleIDs[s.ID] = true
	}
	productIDs := make(map[int]bool, len(dataset.Products))
	for _, p := range dataset.Products {
		productIDs[p.ID] = true
	}
	clientIDs := make(map[int]bool, len(dataset.Clients))
	for _, c := range dataset.Clients {
		clientIDs[c.ID] = true
	}

	linesToSales := RelationStats{Relation: "sale_lines->sales", Total: len(dataset.SaleLines)}
	linesToProducts := RelationStats{Relation: "sale_lines->products", Total: len(dataset.SaleLines)}
	for _, sl := range dataset.SaleLines {
		if !saleIDs[sl.SaleID] {
			linesToSales.Orphans++
		}
		if !productIDs[sl.ProductID] {
			linesToProducts.Orphans++
		}
	}

	salesToClients := RelationStats{Relation: "sales->clients", Total: len(dataset.Sales)}
	for _, s := range dataset.Sales {
		if !clientIDs[s.ClientID] {
			salesToClients.Orphans++
		}
	}

	for _, stats := range []RelationStats{linesToSales, linesToProducts, salesToClients} {
		if stats.Total > 0 {
			stats.Ratio = float64(stats.Orphans) / float64(stats.Total)
		}
		report.Relations[stats.Relation] = stats
	}
}
