package ingest

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

var supplierAliases = map[string][]string{
	"material_id":   {"物料编号", "material_id"},
	"supplier_id":   {"供应商号", "supplier_id"},
	"supplier_name": {"供应商名称", "supplier_name"},
	"unit_price":    {"单价", "unit_price"},
	"currency":      {"币种", "貨幣", "currency"},
	"modified_at":   {"修改日期", "last_modified_at", "modified_at"},
	"stability":     {"稳定性得分", "stability_score"},
}

var supplierRequired = []string{"material_id", "supplier_id"}

// LoadSuppliers reads the supplier quote export. A missing or unparseable
// modification date loads as no date, which ranks the offer as the oldest
// during selection.
func LoadSuppliers(path string) ([]domain.SupplierOffer, error) {
	var header []string
	var rows [][]string
	var err error

	if isXLSX(path) {
		f, openErr := excelize.OpenFile(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open supplier workbook %s: %w", path, openErr)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("supplier workbook %s has no sheets", path)
		}
		header, rows, err = readSheet(f, sheets[0], 0)
	} else {
		header, rows, err = readCSV(path, 0)
	}
	if err != nil {
		return nil, err
	}

	columns, err := resolveColumns("suppliers", header, supplierAliases, supplierRequired)
	if err != nil {
		return nil, err
	}
	t := &table{name: "suppliers", columns: columns, rows: rows}

	offers := make([]domain.SupplierOffer, 0, len(rows))
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		materialID := t.cell(row, "material_id")
		supplierID := t.cell(row, "supplier_id")
		if materialID == "" || supplierID == "" {
			continue
		}

		offer := domain.SupplierOffer{
			MaterialID:     materialID,
			SupplierID:     supplierID,
			SupplierName:   t.cell(row, "supplier_name"),
			LastModifiedAt: parseDate(t.cell(row, "modified_at")),
			StabilityScore: parseFloat(t.cell(row, "stability")),
		}
		if price, ok := parseDecimal(t.cell(row, "unit_price")); ok {
			offer.UnitPrice = domain.Money{Amount: price, Currency: t.cell(row, "currency")}
		}
		offers = append(offers, offer)
	}

	log.Info().Str("path", path).Int("offers", len(offers)).Msg("supplier quotes loaded")
	return offers, nil
}
