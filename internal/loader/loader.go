package loader

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"aurelion/internal/config"
	apperrors "aurelion/internal/errors"
	"aurelion/pkg/contracts/domain"
)

// requiredColumns are the per-table columns the load aborts without.
var requiredColumns = map[domain.TableName][]string{
	domain.TableProducts:  {"id_producto", "nombre_producto", "categoria", "precio_unitario"},
	domain.TableClients:   {"id_cliente", "nombre_cliente", "email", "ciudad", "fecha_alta"},
	domain.TableSales:     {"id_venta", "fecha", "id_cliente", "medio_pago"},
	domain.TableSaleLines: {"id_venta", "id_producto", "cantidad", "precio_unitario", "importe"},
}

// optionalColumns are bound when present but never fail the load.
// nombre_producto on sale lines is backfilled from the catalog, canal on
// sales is derived from the payment method during cleaning.
var optionalColumns = map[domain.TableName][]string{
	domain.TableSales:     {"canal"},
	domain.TableSaleLines: {"nombre_producto"},
}

// Loader reads the four commercial tables into a Dataset.
type Loader struct {
	cfg    config.DatasetsConfig
	paths  *config.Paths
	logger *slog.Logger

	// parseIssues counts cells that failed to parse, per table. The
	// affected fields keep their zero values for validation to flag.
	parseIssues map[domain.TableName]int
}

// New creates a Loader for the configured dataset files.
func New(cfg config.DatasetsConfig, paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		cfg:         cfg,
		paths:       paths,
		logger:      logger,
		parseIssues: make(map[domain.TableName]int),
	}
}

// ParseIssues returns the per-table count of cells that failed to parse
// during the last Load.
func (l *Loader) ParseIssues() map[domain.TableName]int {
	out := make(map[domain.TableName]int, len(l.parseIssues))
	for table, n := range l.parseIssues {
		out[table] = n
	}
	return out
}

// Load reads all four tables concurrently and assembles the Dataset.
// The optional product name on sale lines is backfilled from the
// product catalog when the source omits the column.
func (l *Loader) Load(ctx context.Context) (*domain.Dataset, error) {
	dataset := &domain.Dataset{Sources: make(map[domain.TableName]domain.SourceInfo, 4)}

	type loaded struct {
		table  domain.TableName
		source domain.SourceInfo
		issues int
	}
	results := make(chan loaded, 4)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		table, source, issues, err := l.loadProducts()
		if err != nil {
			return err
		}
		dataset.Products = table
		results <- loaded{domain.TableProducts, source, issues}
		return nil
	})
	g.Go(func() error {
		table, source, issues, err := l.loadClients()
		if err != nil {
			return err
		}
		dataset.Clients = table
		results <- loaded{domain.TableClients, source, issues}
		return nil
	})
	g.Go(func() error {
		table, source, issues, err := l.loadSales()
		if err != nil {
			return err
		}
		dataset.Sales = table
		results <- loaded{domain.TableSales, source, issues}
		return nil
	})
	g.Go(func() error {
		table, source, issues, err := l.loadSaleLines()
		if err != nil {
			return err
		}
		dataset.SaleLines = table
		results <- loaded{domain.TableSaleLines, source, issues}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	for res := range results {
		dataset.Sources[res.table] = res.source
		if res.issues > 0 {
			l.parseIssues[res.table] = res.issues
			l.logger.WarnContext(ctx, "cells failed to parse and were zeroed",
				slog.String("table", string(res.table)),
				slog.Int("cells", res.issues))
		}
	}

	l.backfillProductNames(ctx, dataset)

	l.logger.InfoContext(ctx, "datasets loaded",
		slog.Int("products", len(dataset.Products)),
		slog.Int("clients", len(dataset.Clients)),
		slog.Int("sales", len(dataset.Sales)),
		slog.Int("sale_lines", len(dataset.SaleLines)))

	return dataset, nil
}

// openTable reads and binds the raw table for the given logical table.
func (l *Loader) openTable(name domain.TableName, filename string) (*RawTable, domain.SourceInfo, error) {
	path := l.paths.GetDataPath(filename)
	required := requiredColumns[name]

	table, format, err := readRawTable(path, required)
	if err != nil {
		if _, ok := err.(*apperrors.PipelineError); ok {
			return nil, domain.SourceInfo{}, err
		}
		return nil, domain.SourceInfo{}, apperrors.NewLoadError("failed to read "+string(name), err)
	}

	if missing := table.MissingColumns(required); len(missing) > 0 {
		return nil, domain.SourceInfo{}, apperrors.NewMissingColumnError(string(name), missing[0])
	}

	source := domain.SourceInfo{Path: path, Format: format, Rows: len(table.Rows)}
	return table, source, nil
}

func (l *Loader) loadProducts() ([]domain.Product, domain.SourceInfo, int, error) {
	table, source, err := l.openTable(domain.TableProducts, l.cfg.Products)
	if err != nil {
		return nil, domain.SourceInfo{}, 0, err
	}

	issues := 0
	products := make([]domain.Product, 0, len(table.Rows))
	for _, row := range table.Rows {
		var p domain.Product
		p.ID = bindInt(row["id_producto"], &issues)
		p.Name = row["nombre_producto"]
		p.Category = row["categoria"]
		p.UnitPrice = bindFloat(row["precio_unitario"], &issues)
		products = append(products, p)
	}
	return products, source, issues, nil
}

func (l *Loader) loadClients() ([]domain.Client, domain.SourceInfo, int, error) {
	table, source, err := l.openTable(domain.TableClients, l.cfg.Clients)
	if err != nil {
		return nil, domain.SourceInfo{}, 0, err
	}

	issues := 0
	clients := make([]domain.Client, 0, len(table.Rows))
	for _, row := range table.Rows {
		var c domain.Client
		c.ID = bindInt(row["id_cliente"], &issues)
		c.Name = row["nombre_cliente"]
		c.Email = row["email"]
		c.City = row["ciudad"]
		c.SignupDate = bindDate(row["fecha_alta"], &issues)
		clients = append(clients, c)
	}
	return clients, source, issues, nil
}

func (l *Loader) loadSales() ([]domain.Sale, domain.SourceInfo, int, error) {
	table, source, err := l.openTable(domain.TableSales, l.cfg.Sales)
	if err != nil {
		return nil, domain.SourceInfo{}, 0, err
	}

	issues := 0
	sales := make([]domain.Sale, 0, len(table.Rows))
	for _, row := range table.Rows {
		var s domain.Sale
		s.ID = bindInt(row["id_venta"], &issues)
		s.Date = bindDate(row["fecha"], &issues)
		s.ClientID = bindInt(row["id_cliente"], &issues)
		s.PaymentMethod = domain.PaymentMethod(row["medio_pago"])
		s.Channel = domain.Channel(row["canal"])
		sales = append(sales, s)
	}
	return sales, source, issues, nil
}

func (l *Loader) loadSaleLines() ([]domain.SaleLine, domain.SourceInfo, int, error) {
	table, source, err := l.openTable(domain.TableSaleLines, l.cfg.SaleLines)
	if err != nil {
		return nil, domain.SourceInfo{}, 0, err
	}

	issues := 0
	lines := make([]domain.SaleLine, 0, len(table.Rows))
	for _, row := range table.Rows {
		var sl domain.SaleLine
		sl.SaleID = bindInt(row["id_venta"], &issues)
		sl.ProductID = bindInt(row["id_producto"], &issues)
		sl.ProductName = row["nombre_producto"]
		sl.Quantity = bindInt(row["cantidad"], &issues)
		sl.UnitPrice = bindFloat(row["precio_unitario"], &issues)
		sl.Amount = bindFloat(row["importe"], &issues)
		lines = append(lines, sl)
	}
	return lines, source, issues, nil
}

// backfillProductNames fills missing product names on sale lines by
// joining the product catalog.
func (l *Loader) backfillProductNames(ctx context.Context, dataset *domain.Dataset) {
	names := make(map[int]string, len(dataset.Products))
	for _, p := range dataset.Products {
		names[p.ID] = p.Name
	}

	filled := 0
	for i := range dataset.SaleLines {
		if dataset.SaleLines[i].ProductName == "" {
			if name, ok := names[dataset.SaleLines[i].ProductID]; ok {
				dataset.SaleLines[i].ProductName = name
				filled++
			}
		}
	}
	if filled > 0 {
		l.logger.InfoContext(ctx, "backfilled product names on sale lines",
			slog.Int("lines", filled))
	}
}

func bindInt(value string, issues *int) int {
	if value == "" {
		return 0
	}
	n, err := parseInt(value)
	if err != nil {
		*issues++
		return 0
	}
	return n
}

func bindFloat(value string, issues *int) float64 {
	if value == "" {
		return 0
	}
	f, err := parseFloat(value)
	if err != nil {
		*issues++
		return 0
	}
	return f
}

func bindDate(value string, issues *int) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := parseDate(value)
	if err != nil {
		*issues++
		return time.Time{}
	}
	return ts
}
