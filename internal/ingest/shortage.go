package ingest

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

var shortageAliases = map[string][]string{
	"production_order": {"订单编号", "生产单号", "production_order_id", "production_order"},
	"material_id":      {"物料编号", "material_id"},
	"material_name":    {"物料名称", "material_name"},
	"required_qty":     {"工单需求", "required_quantity"},
	"shortage_qty":     {"仓存不足", "欠料数量", "shortage_quantity"},
	"on_order_qty":     {"已购未返", "on_order_quantity"},
	"shortage_amount":  {"缺料金额", "shortage_amount"},
	"currency":         {"币种", "貨幣", "currency"},
}

var shortageRequired = []string{"production_order"}

// kittedMarkers flag shortage rows that are bookkeeping noise: the material
// column holds a "fully kitted" note instead of a material, so the row
// carries no open shortage.
var kittedMarkers = []string{"已齐套", "齐套"}

// LoadShortages reads the material shortage export. The export carries a
// one-row title banner above the header, blank-keyed rows and kitted-marker
// rows; all three are dropped here so the join only ever sees real shortage
// lines.
func LoadShortages(path string) ([]domain.ShortageLine, error) {
	var header []string
	var rows [][]string
	var err error

	if isXLSX(path) {
		f, openErr := excelize.OpenFile(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open shortage workbook %s: %w", path, openErr)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("shortage workbook %s has no sheets", path)
		}
		header, rows, err = readSheet(f, sheets[0], 1)
	} else {
		header, rows, err = readCSV(path, 1)
	}
	if err != nil {
		return nil, err
	}

	columns, err := resolveColumns("shortages", header, shortageAliases, shortageRequired)
	if err != nil {
		return nil, err
	}
	t := &table{name: "shortages", columns: columns, rows: rows}

	var kitted int
	lines := make([]domain.ShortageLine, 0, len(rows))
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		orderID := t.cell(row, "production_order")
		if orderID == "" {
			continue
		}
		materialName := t.cell(row, "material_name")
		if isKitted(materialName) {
			kitted++
			continue
		}

		line := domain.ShortageLine{
			ProductionOrderID: orderID,
			MaterialName:      materialName,
		}
		if materialID := t.cell(row, "material_id"); materialID != "" {
			line.MaterialID = &materialID
		}
		if qty, ok := parseDecimal(t.cell(row, "shortage_qty")); ok {
			line.ShortageQuantity = qty
		}
		if qty, ok := parseDecimal(t.cell(row, "required_qty")); ok {
			line.RequiredQuantity = &qty
		}
		if qty, ok := parseDecimal(t.cell(row, "on_order_qty")); ok {
			line.OnOrderQuantity = &qty
		}
		if amount, ok := parseDecimal(t.cell(row, "shortage_amount")); ok {
			line.ShortageAmount = &domain.Money{Amount: amount, Currency: t.cell(row, "currency")}
		}
		lines = append(lines, line)
	}

	log.Info().Str("path", path).Int("lines", len(lines)).Int("kitted_dropped", kitted).Msg("shortage export loaded")
	return lines, nil
}

func isKitted(materialName string) bool {
	for _, marker := range kittedMarkers {
		if strings.Contains(materialName, marker) {
			return true
		}
	}
	return false
}
