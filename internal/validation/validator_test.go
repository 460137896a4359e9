package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelion/internal/config"
	apperrors "aurelion/internal/errors"
	"aurelion/pkg/contracts/domain"
)

func validDataset() *domain.Dataset {
	return &domain.Dataset{
		Products: []domain.Product{
			{ID: 1, Name: "Yerba Mate", Category: "almacen", UnitPrice: 1500.50},
			{ID: 2, Name: "Leche Entera", Category: "lacteos", UnitPrice: 900},
		},
		Clients: []domain.Client{
			{ID: 10, Name: "Ana Suarez", Email: "ana@example.com", City: "Cordoba",
				SignupDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
		Sales: []domain.Sale{
			{ID: 100, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), ClientID: 10,
				PaymentMethod: domain.PaymentCash, Channel: domain.ChannelInStore},
		},
		SaleLines: []domain.SaleLine{
			{SaleID: 100, ProductID: 1, ProductName: "Yerba Mate", Quantity: 2, UnitPrice: 1500.50, Amount: 3001},
		},
		Sources: map[domain.TableName]domain.SourceInfo{},
	}
}

func TestCheckCleanDataset(t *testing.T) {
	v := New(config.Default().Validation, nil)

	report, err := v.Check(context.Background(), validDataset())
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 0, report.Relations["sale_lines->sales"].Orphans)
	assert.Equal(t, 0, report.Relations["sales->clients"].Orphans)
}

func TestCheckFieldConstraints(t *testing.T) {
	dataset := validDataset()
	dataset.Products = append(dataset.Products,
		domain.Product{ID: 3, Name: "", Category: "almacen", UnitPrice: -5})
	dataset.Sales = append(dataset.Sales,
		domain.Sale{ID: 101, Date: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), ClientID: 10,
			PaymentMethod: "barter"})
	dataset.SaleLines = append(dataset.SaleLines,
		domain.SaleLine{SaleID: 101, ProductID: 2, Quantity: 0, UnitPrice: 900, Amount: 0})

	v := New(config.Default().Validation, nil)
	report, err := v.Check(context.Background(), dataset)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, report.IssueCount(domain.TableProducts), 2) // empty name, negative price
	assert.GreaterOrEqual(t, report.IssueCount(domain.TableSales), 1)    // unknown payment method
	assert.GreaterOrEqual(t, report.IssueCount(domain.TableSaleLines), 1) // zero quantity

	assert.Contains(t, report.IssueRows[domain.TableProducts], 2)
	assert.Contains(t, report.IssueRows[domain.TableSales], 1)
}

func TestCheckDateWindow(t *testing.T) {
	cfg := config.Default().Validation
	cfg.MinDate = "2025-01-01"
	cfg.MaxDate = "2025-12-31"

	dataset := validDataset()
	dataset.Sales = append(dataset.Sales,
		domain.Sale{ID: 101, Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), ClientID: 10,
			PaymentMethod: domain.PaymentCash})

	v := New(cfg, nil)
	report, err := v.Check(context.Background(), dataset)
	require.NoError(t, err)

	found := false
	for _, issue := range report.Issues {
		if issue.Table == domain.TableSales && issue.Field == "fecha" {
			found = true
		}
	}
	assert.True(t, found, "expected a date window issue")
}

func TestCheckMaxUnitPrice(t *testing.T) {
	cfg := config.Default().Validation
	cfg.MaxUnitPrice = 1000

	v := New(cfg, nil)
	report, err := v.Check(context.Background(), validDataset())
	require.NoError(t, err)

	// Yerba Mate at 1500.50 exceeds the cap twice: product and line.
	assert.Equal(t, 1, report.IssueCount(domain.TableProducts))
	assert.Equal(t, 1, report.IssueCount(domain.TableSaleLines))
}

func TestCheckOrphansWithinTolerance(t *testing.T) {
	cfg := config.Default().Validation
	cfg.MaxOrphanRatio = 0.5

	dataset := validDataset()
	dataset.SaleLines = append(dataset.SaleLines,
		domain.SaleLine{SaleID: 999, ProductID: 1, Quantity: 1, UnitPrice: 10, Amount: 10})

	v := New(cfg, nil)
	report, err := v.Check(context.Background(), dataset)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Relations["sale_lines->sales"].Orphans)
}

func TestCheckOrphansAboveToleranceFail(t *testing.T) {
	cfg := config.Default().Validation
	cfg.MaxOrphanRatio = 0.1

	dataset := validDataset()
	dataset.SaleLines = append(dataset.SaleLines,
		domain.SaleLine{SaleID: 999, ProductID: 1, Quantity: 1, UnitPrice: 10, Amount: 10})

	v := New(cfg, nil)
	_, err := v.Check(context.Background(), dataset)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIntegrityViolation, apperrors.CodeOf(err))
}
