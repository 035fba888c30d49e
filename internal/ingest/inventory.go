package ingest

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

var inventoryAliases = map[string][]string{
	"material_id":  {"物料编号", "material_id"},
	"latest_quote": {"最新報價", "最新报价", "latest_quote"},
	"cost_price":   {"成本單價", "成本单价", "cost_price"},
	"currency":     {"貨幣", "币种", "currency"},
}

var inventoryRequired = []string{"material_id"}

// LoadInventory reads the warehouse price list. Each material's unit price
// prefers the latest quote and falls back to the booked cost price; rows
// with neither are dropped since a zero price cannot price a shortage.
func LoadInventory(path string) ([]domain.InventoryPrice, error) {
	var header []string
	var rows [][]string
	var err error

	if isXLSX(path) {
		f, openErr := excelize.OpenFile(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open inventory workbook %s: %w", path, openErr)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("inventory workbook %s has no sheets", path)
		}
		header, rows, err = readSheet(f, sheets[0], 0)
	} else {
		header, rows, err = readCSV(path, 0)
	}
	if err != nil {
		return nil, err
	}

	columns, err := resolveColumns("inventory", header, inventoryAliases, inventoryRequired)
	if err != nil {
		return nil, err
	}
	t := &table{name: "inventory", columns: columns, rows: rows}

	prices := make([]domain.InventoryPrice, 0, len(rows))
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		materialID := t.cell(row, "material_id")
		if materialID == "" {
			continue
		}

		price, ok := parseDecimal(t.cell(row, "latest_quote"))
		if !ok {
			price, ok = parseDecimal(t.cell(row, "cost_price"))
		}
		if !ok {
			continue
		}

		prices = append(prices, domain.InventoryPrice{
			MaterialID: materialID,
			UnitPrice:  domain.Money{Amount: price, Currency: t.cell(row, "currency")},
		})
	}

	log.Info().Str("path", path).Int("prices", len(prices)).Msg("inventory price list loaded")
	return prices, nil
}
