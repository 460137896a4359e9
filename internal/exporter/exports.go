package exporter

import (
	"context"
	"log/slog"
	"strconv"

	"aurelion/internal/analytics"
	"aurelion/internal/config"
	apperrors "aurelion/internal/errors"
	"aurelion/pkg/contracts/domain"
)

// Exporter writes cleaned tables and KPI exports as CSV files.
type Exporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// New creates an Exporter rooted at the configured paths.
func New(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{csv: NewCSVWriter(paths), logger: logger}
}

// ExportCleanDataset re-exports the cleaned tables as CSV so downstream
// tools get a normalized copy regardless of the input formats.
func (e *Exporter) ExportCleanDataset(ctx context.Context, dataset *domain.Dataset) error {
	if err := e.exportProducts(dataset.Products); err != nil {
		return apperrors.NewExportError("clean/products.csv", err)
	}
	if err := e.exportClients(dataset.Clients); err != nil {
		return apperrors.NewExportError("clean/clients.csv", err)
	}
	if err := e.exportSales(dataset.Sales); err != nil {
		return apperrors.NewExportError("clean/sales.csv", err)
	}
	if err := e.exportSaleLines(dataset.SaleLines); err != nil {
		return apperrors.NewExportError("clean/sale_lines.csv", err)
	}

	e.logger.InfoContext(ctx, "clean dataset exported",
		slog.Int("products", len(dataset.Products)),
		slog.Int("clients", len(dataset.Clients)),
		slog.Int("sales", len(dataset.Sales)),
		slog.Int("sale_lines", len(dataset.SaleLines)))
	return nil
}

func (e *Exporter) exportProducts(products []domain.Product) error {
	records := make([][]string, 0, len(products))
	for _, p := range products {
		records = append(records, []string{
			formatInt(p.ID), p.Name, p.Category, formatFloat(p.UnitPrice),
		})
	}
	return e.csv.WriteSimpleCSV("clean/products.csv",
		[]string{"id_producto", "nombre_producto", "categoria", "precio_unitario"}, records)
}

func (e *Exporter) exportClients(clients []domain.Client) error {
	records := make([][]string, 0, len(clients))
	for _, c := range clients {
		records = append(records, []string{
			formatInt(c.ID), c.Name, c.Email, c.City, formatDate(c.SignupDate),
		})
	}
	return e.csv.WriteSimpleCSV("clean/clients.csv",
		[]string{"id_cliente", "nombre_cliente", "email", "ciudad", "fecha_alta"}, records)
}

func (e *Exporter) exportSales(sales []domain.Sale) error {
	records := make([][]string, 0, len(sales))
	for _, s := range sales {
		records = append(records, []string{
			formatInt(s.ID), formatDate(s.Date), formatInt(s.ClientID),
			string(s.PaymentMethod), string(s.Channel),
		})
	}
	return e.csv.WriteSimpleCSV("clean/sales.csv",
		[]string{"id_venta", "fecha", "id_cliente", "medio_pago", "canal"}, records)
}

// exportSaleLines streams the fact table, usually the largest of the four.
func (e *Exporter) exportSaleLines(lines []domain.SaleLine) error {
	stream, err := e.csv.CreateStreamWriter("clean/sale_lines.csv",
		[]string{"id_venta", "id_producto", "nombre_producto", "cantidad", "precio_unitario", "importe"})
	if err != nil {
		return err
	}
	for _, l := range lines {
		record := []string{
			formatInt(l.SaleID), formatInt(l.ProductID), l.ProductName,
			formatInt(l.Quantity), formatFloat(l.UnitPrice), formatFloat(l.Amount),
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return err
		}
	}
	return stream.Close()
}

// ExportKPIs writes the analytical exports derived from the summary.
func (e *Exporter) ExportKPIs(ctx context.Context, summary *analytics.Summary) error {
	exports := []struct {
		name string
		fn   func(*analytics.Summary) error
	}{
		{"monthly_ticket.csv", e.exportMonthlyTickets},
		{"top_products.csv", e.exportTopProducts},
		{"payment_methods.csv", e.exportPaymentShares},
		{"abc_products.csv", func(s *analytics.Summary) error {
			return e.exportABC("abc_products.csv", "id_producto", "nombre_producto", s.ProductsABC)
		}},
		{"abc_clients.csv", func(s *analytics.Summary) error {
			return e.exportABC("abc_clients.csv", "id_cliente", "etiqueta", s.ClientsABC)
		}},
	}

	for _, export := range exports {
		if err := export.fn(summary); err != nil {
			return apperrors.NewExportError(export.name, err)
		}
	}

	e.logger.InfoContext(ctx, "kpi exports written", slog.Int("files", len(exports)))
	return nil
}

func (e *Exporter) exportMonthlyTickets(summary *analytics.Summary) error {
	records := make([][]string, 0, len(summary.MonthlyTickets))
	for _, mt := range summary.MonthlyTickets {
		records = append(records, []string{
			mt.Month, formatInt(mt.Sales), formatFloat(mt.Revenue), formatFloat(mt.AverageTicket),
		})
	}
	return e.csv.WriteSimpleCSV("monthly_ticket.csv",
		[]string{"mes", "ventas", "importe", "ticket_promedio"}, records)
}

func (e *Exporter) exportTopProducts(summary *analytics.Summary) error {
	records := make([][]string, 0, len(summary.TopProducts))
	for i, tp := range summary.TopProducts {
		records = append(records, []string{
			strconv.Itoa(i + 1), formatInt(tp.ProductID), tp.Name, tp.Category,
			formatInt(tp.Quantity), formatFloat(tp.Revenue),
		})
	}
	return e.csv.WriteSimpleCSV("top_products.csv",
		[]string{"puesto", "id_producto", "nombre_producto", "categoria", "cantidad", "importe"}, records)
}

func (e *Exporter) exportPaymentShares(summary *analytics.Summary) error {
	records := make([][]string, 0, len(summary.PaymentShares))
	for _, ps := range summary.PaymentShares {
		records = append(records, []string{
			string(ps.Method), string(ps.Channel), formatInt(ps.Sales),
			formatFloat(ps.Revenue), formatPercent(ps.Share),
		})
	}
	return e.csv.WriteSimpleCSV("payment_methods.csv",
		[]string{"medio_pago", "canal", "ventas", "importe", "participacion"}, records)
}

func (e *Exporter) exportABC(file, idHeader, labelHeader string, result *analytics.ABCResult) error {
	records := make([][]string, 0, len(result.Items))
	for _, item := range result.Items {
		records = append(records, []string{
			formatInt(item.ID), item.Label, formatFloat(item.Contribution),
			formatPercent(item.Share), formatPercent(item.CumulativeShare), string(item.Class),
		})
	}
	return e.csv.WriteSimpleCSV(file,
		[]string{idHeader, labelHeader, "importe", "participacion", "acumulado", "clase"}, records)
}
