package exporter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"aurelion/internal/analytics"
	"aurelion/internal/cleaning"
	"aurelion/internal/config"
	apperrors "aurelion/internal/errors"
	"aurelion/pkg/contracts/domain"
)

// ReportData bundles everything the executive summary renders.
type ReportData struct {
	GeneratedAt time.Time
	Summary     *analytics.Summary
	Cleaning    *cleaning.Result
	Sources     map[domain.TableName]domain.SourceInfo
}

// ReportBuilder renders the executive summary as markdown.
type ReportBuilder struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewReportBuilder creates a report builder.
func NewReportBuilder(paths *config.Paths, logger *slog.Logger) *ReportBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportBuilder{paths: paths, logger: logger}
}

// Write renders the report and saves it under the docs directory.
func (b *ReportBuilder) Write(ctx context.Context, data ReportData) (string, error) {
	path := b.paths.GetDocsPath("resumen.md")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", apperrors.NewReportError("create docs directory", err)
	}
	if err := os.WriteFile(path, b.Render(data), 0644); err != nil {
		return "", apperrors.NewReportError("write summary report", err)
	}

	b.logger.InfoContext(ctx, "executive summary written", slog.String("path", path))
	return path, nil
}

// Render produces the markdown document.
func (b *ReportBuilder) Render(data ReportData) []byte {
	var buf bytes.Buffer
	s := data.Summary

	fmt.Fprintf(&buf, "# Resumen ejecutivo\n\n")
	fmt.Fprintf(&buf, "Generado: %s\n\n", data.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&buf, "## Datos procesados\n\n")
	fmt.Fprintf(&buf, "| Tabla | Filas limpias | Descartadas |\n")
	fmt.Fprintf(&buf, "|---|---:|---:|\n")
	for _, table := range domain.AllTables {
		stats := data.Cleaning.Stats[table]
		fmt.Fprintf(&buf, "| %s | %d | %d |\n", table, stats.After, stats.Dropped())
	}
	fmt.Fprintf(&buf, "\nImportes recalculados: %d. Canales derivados: %d.\n\n",
		data.Cleaning.AmountsFixed, data.Cleaning.ChannelsDerived)

	fmt.Fprintf(&buf, "## Indicadores generales\n\n")
	fmt.Fprintf(&buf, "- Facturacion total: %s\n", formatFloat(s.TotalRevenue))
	fmt.Fprintf(&buf, "- Ventas: %d\n", s.Sales)
	fmt.Fprintf(&buf, "- Ticket promedio: %s\n\n", formatFloat(s.AverageTicket))

	fmt.Fprintf(&buf, "## Ticket promedio mensual\n\n")
	fmt.Fprintf(&buf, "| Mes | Ventas | Importe | Ticket promedio |\n")
	fmt.Fprintf(&buf, "|---|---:|---:|---:|\n")
	for _, mt := range s.MonthlyTickets {
		fmt.Fprintf(&buf, "| %s | %d | %s | %s |\n",
			mt.Month, mt.Sales, formatFloat(mt.Revenue), formatFloat(mt.AverageTicket))
	}

	fmt.Fprintf(&buf, "\n## Productos mas vendidos\n\n")
	fmt.Fprintf(&buf, "| # | Producto | Categoria | Cantidad | Importe |\n")
	fmt.Fprintf(&buf, "|---:|---|---|---:|---:|\n")
	for i, tp := range s.TopProducts {
		fmt.Fprintf(&buf, "| %d | %s | %s | %d | %s |\n",
			i+1, tp.Name, tp.Category, tp.Quantity, formatFloat(tp.Revenue))
	}

	fmt.Fprintf(&buf, "\n## Medios de pago\n\n")
	fmt.Fprintf(&buf, "| Medio | Canal | Ventas | Importe | Participacion |\n")
	fmt.Fprintf(&buf, "|---|---|---:|---:|---:|\n")
	for _, ps := range s.PaymentShares {
		fmt.Fprintf(&buf, "| %s | %s | %d | %s | %s |\n",
			ps.Method, ps.Channel, ps.Sales, formatFloat(ps.Revenue), formatPercent(ps.Share))
	}

	fmt.Fprintf(&buf, "\n## Clasificacion ABC\n\n")
	productCounts := s.ProductsABC.Counts()
	clientCounts := s.ClientsABC.Counts()
	fmt.Fprintf(&buf, "| Clase | Productos | Clientes |\n")
	fmt.Fprintf(&buf, "|---|---:|---:|\n")
	for _, class := range []analytics.ABCClass{analytics.ClassA, analytics.ClassB, analytics.ClassC} {
		fmt.Fprintf(&buf, "| %s | %d | %d |\n", class, productCounts[class], clientCounts[class])
	}

	fmt.Fprintf(&buf, "\n## Correlaciones\n\n")
	fmt.Fprintf(&buf, "- Cantidad vs precio unitario: %.3f\n", s.Correlations.QuantityUnitPrice)
	fmt.Fprintf(&buf, "- Cantidad vs importe: %.3f\n", s.Correlations.QuantityAmount)
	fmt.Fprintf(&buf, "- Precio unitario vs importe: %.3f\n", s.Correlations.UnitPriceAmount)

	if len(data.Sources) > 0 {
		fmt.Fprintf(&buf, "\n## Origenes de datos\n\n")
		fmt.Fprintf(&buf, "| Tabla | Archivo | Formato | Filas leidas |\n")
		fmt.Fprintf(&buf, "|---|---|---|---:|\n")
		for _, table := range domain.AllTables {
			source, ok := data.Sources[table]
			if !ok {
				continue
			}
			fmt.Fprintf(&buf, "| %s | %s | %s | %d |\n",
				table, filepath.Base(source.Path), source.Format, source.Rows)
		}
	}

	return buf.Bytes()
}
