package exporter

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelion/internal/analytics"
	"aurelion/internal/cleaning"
	"aurelion/pkg/contracts/domain"
)

func reportData() ReportData {
	return ReportData{
		GeneratedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary: &analytics.Summary{
			Lines:         4,
			Sales:         3,
			Clients:       2,
			Products:      3,
			TotalRevenue:  7500,
			AverageTicket: 2500,
			MonthlyTickets: []analytics.MonthlyTicket{
				{Month: "2025-01", Sales: 2, Revenue: 6000, AverageTicket: 3000},
				{Month: "2025-02", Sales: 1, Revenue: 1500, AverageTicket: 1500},
			},
			TopProducts: []analytics.ProductRank{
				{ProductID: 1, Name: "Yerba Mate", Category: "almacen", Quantity: 3, Revenue: 4500},
				{ProductID: 2, Name: "Leche Entera", Category: "lacteos", Quantity: 3, Revenue: 2700},
			},
			PaymentShares: []analytics.PaymentShare{
				{Method: domain.PaymentCash, Channel: domain.ChannelInStore, Sales: 2, Revenue: 4800, Share: 0.64},
				{Method: domain.PaymentCreditCard, Channel: domain.ChannelOnline, Sales: 1, Revenue: 2700, Share: 0.36},
			},
			Correlations: analytics.Correlations{
				QuantityUnitPrice: 0.25,
				QuantityAmount:    0.5,
				UnitPriceAmount:   0.75,
			},
			ProductsABC: &analytics.ABCResult{Items: []analytics.ABCItem{
				{ID: 1, Label: "Yerba Mate", Contribution: 4500, Class: analytics.ClassA},
				{ID: 2, Label: "Leche Entera", Contribution: 2700, Class: analytics.ClassB},
				{ID: 3, Label: "Pan Frances", Contribution: 300, Class: analytics.ClassC},
			}},
			ClientsABC: &analytics.ABCResult{Items: []analytics.ABCItem{
				{ID: 10, Contribution: 4800, Class: analytics.ClassA},
				{ID: 11, Contribution: 2700, Class: analytics.ClassC},
			}},
		},
		Cleaning: &cleaning.Result{
			Stats: map[domain.TableName]cleaning.Stats{
				domain.TableProducts:  {Before: 3, After: 3},
				domain.TableClients:   {Before: 2, After: 2},
				domain.TableSales:     {Before: 4, After: 3},
				domain.TableSaleLines: {Before: 5, After: 4},
			},
			AmountsFixed:    1,
			ChannelsDerived: 2,
		},
		Sources: map[domain.TableName]domain.SourceInfo{
			domain.TableProducts:  {Path: "data/productos.xlsx", Format: "xlsx", Rows: 3},
			domain.TableClients:   {Path: "data/clientes.csv", Format: "csv", Rows: 2},
			domain.TableSales:     {Path: "data/ventas.json", Format: "json", Rows: 4},
			domain.TableSaleLines: {Path: "data/detalle_ventas.jsonl", Format: "jsonl", Rows: 5},
		},
	}
}

func TestRenderReportGolden(t *testing.T) {
	b := NewReportBuilder(testPaths(t), nil)

	g := goldie.New(t)
	g.Assert(t, "resumen", b.Render(reportData()))
}

func TestWriteReport(t *testing.T) {
	paths := testPaths(t)
	b := NewReportBuilder(paths, nil)

	path, err := b.Write(context.Background(), reportData())
	require.NoError(t, err)
	assert.Equal(t, paths.GetDocsPath("resumen.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# Resumen ejecutivo")
	assert.Contains(t, string(raw), "Ticket promedio: 2500.00")
}
