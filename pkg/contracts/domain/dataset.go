package domain

import (
	"time"
)

// TableName identifies one of the four commercial tables.
type TableName string

const (
	TableProducts  TableName = "products"
	TableClients   TableName = "clients"
	TableSales     TableName = "sales"
	TableSaleLines TableName = "sale_lines"
)

// AllTables lists the tables in load order.
var AllTables = []TableName{TableProducts, TableClients, TableSales, TableSaleLines}

// SourceInfo describes where a table was loaded from.
type SourceInfo struct {
	Path   string `json:"path"`
	Format string `json:"format"` // "xlsx", "csv", "json" or "jsonl"
	Rows   int    `json:"rows"`
}

// Dataset bundles the four commercial tables and their source metadata.
type Dataset struct {
	Products  []Product
	Clients   []Client
	Sales     []Sale
	SaleLines []SaleLine

	Sources map[TableName]SourceInfo
}

// RowCounts returns the per-table row counts.
func (d *Dataset) RowCounts() map[TableName]int {
	return map[TableName]int{
		TableProducts:  len(d.Products),
		TableClients:   len(d.Clients),
		TableSales:     len(d.Sales),
		TableSaleLines: len(d.SaleLines),
	}
}

// EnrichedLine is the integrated fact row used by the KPI engine: a sale
// line joined with its sale header and product catalog entry.
type EnrichedLine struct {
	SaleID        int           `json:"id_venta"`
	Date          time.Time     `json:"fecha"`
	ClientID      int           `json:"id_cliente"`
	PaymentMethod PaymentMethod `json:"medio_pago"`
	Channel       Channel       `json:"canal"`
	ProductID     int           `json:"id_producto"`
	ProductName   string        `json:"nombre_producto"`
	Category      string        `json:"categoria"`
	Quantity      int           `json:"cantidad"`
	UnitPrice     float64       `json:"precio_unitario"`
	Amount        float64       `json:"importe"`
}
