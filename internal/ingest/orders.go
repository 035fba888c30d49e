package ingest

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

var orderAliases = map[string][]string{
	"production_order": {"生产单号", "生 產 單 号(  廠方 )", "production_order_id", "production_order"},
	"customer_order":   {"客户订单号", "生 產 單 号(客方 )", "customer_order_id", "customer_order"},
	"product_model":    {"产品型号", "型 號( 廠方/客方 )", "product_model"},
	"quantity":         {"数量Pcs", "數 量  (Pcs)", "数量", "quantity"},
	"order_amount":     {"订单金额", "order_amount"},
	"currency":         {"币种", "貨幣", "currency"},
	"delivery_date":    {"客户交期", "客期", "delivery_date"},
}

var orderRequired = []string{"production_order"}

// LoadOrders reads the order workbook. Every sheet is loaded and its rows
// tagged with a month label derived from the sheet name, so a workbook with
// an "8月" and a "9月" sheet yields one combined table with the month kept
// per row. A csv export loads as a single untagged sheet.
//
// defaultCurrency tags order amounts when the export has no currency
// column of its own.
func LoadOrders(path, defaultCurrency string) ([]domain.Order, error) {
	if !isXLSX(path) {
		header, rows, err := readCSV(path, 0)
		if err != nil {
			return nil, err
		}
		return decodeOrders("orders", header, rows, "", "", defaultCurrency)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open order workbook %s: %w", path, err)
	}
	defer f.Close()

	var orders []domain.Order
	for _, sheet := range f.GetSheetList() {
		header, rows, err := readSheet(f, sheet, 0)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		decoded, err := decodeOrders("orders", header, rows, monthLabel(sheet), sheet, defaultCurrency)
		if err != nil {
			return nil, err
		}
		orders = append(orders, decoded...)
	}

	log.Info().Str("path", path).Int("orders", len(orders)).Msg("order workbook loaded")
	return orders, nil
}

func decodeOrders(tableName string, header []string, rows [][]string, month, sheet, defaultCurrency string) ([]domain.Order, error) {
	columns, err := resolveColumns(tableName, header, orderAliases, orderRequired)
	if err != nil {
		return nil, err
	}
	t := &table{name: tableName, columns: columns, rows: rows}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		orderID := t.cell(row, "production_order")
		if orderID == "" {
			continue
		}

		order := domain.Order{
			ProductionOrderID: orderID,
			CustomerOrderID:   t.cell(row, "customer_order"),
			ProductModel:      t.cell(row, "product_model"),
			Month:             month,
			SourceSheet:       sheet,
			DeliveryDate:      parseDate(t.cell(row, "delivery_date")),
		}
		if qty, ok := parseDecimal(t.cell(row, "quantity")); ok {
			order.Quantity = qty.IntPart()
		}
		if amount, ok := parseDecimal(t.cell(row, "order_amount")); ok {
			currency := t.cell(row, "currency")
			if currency == "" {
				currency = defaultCurrency
			}
			order.OrderAmount = &domain.Money{Amount: amount, Currency: currency}
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// monthLabel extracts the month tag from a sheet name: "8月 -柬" and "8月"
// both tag as "8月".
func monthLabel(sheet string) string {
	trimmed := strings.TrimSpace(sheet)
	if i := strings.IndexAny(trimmed, " -"); i > 0 {
		return strings.TrimSpace(trimmed[:i])
	}
	return trimmed
}
