package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount tagged with an explicit currency code.
// Amounts never carry an implied currency; conversion happens in the engine.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Order is one production order as loaded from the order workbook.
// ProductionOrderID is kept as a string: real order numbers carry leading
// zeros and must never be parsed numerically.
type Order struct {
	ProductionOrderID string     `json:"production_order_id"`
	CustomerOrderID   string     `json:"customer_order_id,omitempty"`
	ProductModel      string     `json:"product_model,omitempty"`
	Quantity          int64      `json:"quantity,omitempty"`
	Month             string     `json:"month,omitempty"`
	SourceSheet       string     `json:"source_sheet,omitempty"`
	DeliveryDate      *time.Time `json:"delivery_date,omitempty"`
	OrderAmount       *Money     `json:"order_amount,omitempty"`
}

// ShortageLine is one material shortage row tied to a production order.
// MaterialID is nullable: some shortage exports carry rows with the material
// column blank, which must flow through as data rather than abort the run.
type ShortageLine struct {
	ProductionOrderID string           `json:"production_order_id"`
	MaterialID        *string          `json:"material_id,omitempty"`
	MaterialName      string           `json:"material_name,omitempty"`
	ShortageQuantity  decimal.Decimal  `json:"shortage_quantity"`
	ShortageAmount    *Money           `json:"shortage_amount,omitempty"`
	RequiredQuantity  *decimal.Decimal `json:"required_quantity,omitempty"`
	OnOrderQuantity   *decimal.Decimal `json:"on_order_quantity,omitempty"`
}

// InventoryPrice is the warehouse unit price for a material. At most one
// price per material takes effect; duplicate rows keep the first occurrence.
type InventoryPrice struct {
	MaterialID string `json:"material_id"`
	UnitPrice  Money  `json:"unit_price"`
}

// SupplierOffer is one supplier's quote for a material.
type SupplierOffer struct {
	MaterialID     string          `json:"material_id"`
	SupplierID     string          `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name,omitempty"`
	UnitPrice      Money           `json:"unit_price"`
	MinOrderQty    decimal.Decimal `json:"min_order_qty,omitempty"`
	LastModifiedAt *time.Time      `json:"last_modified_at,omitempty"`
	StabilityScore float64         `json:"stability_score"`
}

// Tables bundles the immutable source snapshot for one analysis run.
type Tables struct {
	Orders          []Order
	Shortages       []ShortageLine
	InventoryPrices []InventoryPrice
	SupplierOffers  []SupplierOffer
}

// SelectedOffer is the supplier chosen for a material, with the unit price
// already converted to the reporting currency.
type SelectedOffer struct {
	SupplierID     string          `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name,omitempty"`
	UnitPrice      decimal.Decimal `json:"unit_price_reporting"`
	SourcePrice    Money           `json:"source_price"`
	MinOrderQty    decimal.Decimal `json:"min_order_qty,omitempty"`
	LastModifiedAt *time.Time      `json:"last_modified_at,omitempty"`
	StabilityScore float64         `json:"stability_score"`
}

// IntegratedRecord is one line of the expanded analysis table: an order
// joined against at most one shortage line plus its optional price and
// supplier matches. Orders with no shortage produce exactly one record with
// the shortage fields empty.
type IntegratedRecord struct {
	ProductionOrderID string     `json:"production_order_id"`
	CustomerOrderID   string     `json:"customer_order_id,omitempty"`
	ProductModel      string     `json:"product_model,omitempty"`
	Quantity          int64      `json:"quantity,omitempty"`
	Month             string     `json:"month,omitempty"`
	DeliveryDate      *time.Time `json:"delivery_date,omitempty"`

	OrderAmount          *Money           `json:"order_amount,omitempty"`
	OrderAmountReporting *decimal.Decimal `json:"order_amount_reporting,omitempty"`

	HasShortage      bool            `json:"has_shortage"`
	MaterialID       *string         `json:"material_id,omitempty"`
	MaterialName     string          `json:"material_name,omitempty"`
	ShortageQuantity decimal.Decimal `json:"shortage_quantity"`

	InventoryUnitPrice *decimal.Decimal `json:"inventory_unit_price,omitempty"`
	Supplier           *SelectedOffer   `json:"supplier,omitempty"`

	// LineAmount is the shortage value of this line in the reporting
	// currency. Unlike the order amount it is additive across a given
	// order's lines.
	LineAmount decimal.Decimal `json:"line_amount_reporting"`

	Tier CompletenessTier   `json:"completeness_tier"`
	Rule ClassificationRule `json:"classification_rule"`
}

// OrderSummary is the order-grain rollup of IntegratedRecords, with the
// order amount deduplicated back to its true total.
type OrderSummary struct {
	ProductionOrderID   string           `json:"production_order_id"`
	CustomerOrderIDs    []string         `json:"customer_order_ids,omitempty"`
	Month               string           `json:"month,omitempty"`
	ProductModel        string           `json:"product_model,omitempty"`
	OrderAmount         decimal.Decimal  `json:"order_amount_reporting"`
	TotalShortageAmount decimal.Decimal  `json:"total_shortage_amount_reporting"`
	ShortageLineCount   int              `json:"shortage_line_count"`
	ROI                 ROI              `json:"roi"`
	Tier                CompletenessTier `json:"completeness_tier"`
}
