// Package report renders an analysis result as a multi-sheet Excel
// workbook: the line-grain detail, the order rollup, the contested-supplier
// audit and the run's headline statistics.
package report

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
	"github.com/yingtu-pmc/analyzer-go/internal/engine"
)

const (
	sheetDetail  = "综合物料分析明细"
	sheetOrders  = "订单汇总"
	sheetAudit   = "多供应商选择表"
	sheetStats   = "汇总统计"
	amountDigits = 2
)

// Write renders the result into workbook bytes.
func Write(result *engine.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeDetail(f, result.Records); err != nil {
		return nil, err
	}
	if err := writeOrders(f, result.Summaries); err != nil {
		return nil, err
	}
	if err := writeAudit(f, result.SupplierAudit); err != nil {
		return nil, err
	}
	if err := writeStats(f, result); err != nil {
		return nil, err
	}

	// The default sheet is replaced by the detail sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetDetail); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the result into a workbook on disk.
func WriteFile(result *engine.Result, path string) error {
	data, err := Write(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeDetail(f *excelize.File, records []domain.IntegratedRecord) error {
	if _, err := f.NewSheet(sheetDetail); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetDetail, err)
	}

	header := []interface{}{
		"生产单号", "客户订单号", "产品型号", "数量Pcs", "月份",
		"订单金额(RMB)", "物料编号", "物料名称", "欠料数量",
		"库存单价(RMB)", "主供应商号", "主供应商名称", "供应商单价(RMB)",
		"缺料金额(RMB)", "完整度", "判定规则",
	}
	if err := f.SetSheetRow(sheetDetail, "A1", &header); err != nil {
		return fmt.Errorf("failed to write detail header: %w", err)
	}

	for i, rec := range records {
		row := make([]interface{}, 0, len(header))
		row = append(row, rec.ProductionOrderID, rec.CustomerOrderID, rec.ProductModel, rec.Quantity, rec.Month)
		row = append(row, decimalCell(rec.OrderAmountReporting))
		row = append(row, stringCell(rec.MaterialID), rec.MaterialName, rec.ShortageQuantity.String())
		row = append(row, decimalCell(rec.InventoryUnitPrice))
		if rec.Supplier != nil {
			row = append(row, rec.Supplier.SupplierID, rec.Supplier.SupplierName, rec.Supplier.UnitPrice.StringFixed(amountDigits))
		} else {
			row = append(row, "", "", "")
		}
		row = append(row, rec.LineAmount.StringFixed(amountDigits), string(rec.Tier), string(rec.Rule))

		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetDetail, cell, &row); err != nil {
			return fmt.Errorf("failed to write detail row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeOrders(f *excelize.File, summaries []domain.OrderSummary) error {
	if _, err := f.NewSheet(sheetOrders); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetOrders, err)
	}

	header := []interface{}{
		"生产单号", "客户订单号", "月份", "产品型号",
		"订单金额(RMB)", "缺料总金额(RMB)", "欠料行数", "ROI", "完整度",
	}
	if err := f.SetSheetRow(sheetOrders, "A1", &header); err != nil {
		return fmt.Errorf("failed to write order header: %w", err)
	}

	for i, s := range summaries {
		row := []interface{}{
			s.ProductionOrderID,
			joinIDs(s.CustomerOrderIDs),
			s.Month,
			s.ProductModel,
			s.OrderAmount.StringFixed(amountDigits),
			s.TotalShortageAmount.StringFixed(amountDigits),
			s.ShortageLineCount,
			s.ROI.String(),
			string(s.Tier),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetOrders, cell, &row); err != nil {
			return fmt.Errorf("failed to write order row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeAudit(f *excelize.File, audit []engine.ScoredOffer) error {
	if _, err := f.NewSheet(sheetAudit); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetAudit, err)
	}

	header := []interface{}{
		"物料编号", "供应商号", "供应商名称", "单价(RMB)",
		"时间得分", "价格得分", "稳定性得分", "综合得分", "是否主选",
	}
	if err := f.SetSheetRow(sheetAudit, "A1", &header); err != nil {
		return fmt.Errorf("failed to write audit header: %w", err)
	}

	for i, offer := range audit {
		selected := ""
		if offer.Selected {
			selected = "是"
		}
		row := []interface{}{
			offer.MaterialID,
			offer.SupplierID,
			offer.SupplierName,
			offer.UnitPrice.StringFixed(amountDigits),
			fmt.Sprintf("%.3f", offer.RecencyRank),
			fmt.Sprintf("%.3f", offer.PriceRank),
			fmt.Sprintf("%.3f", offer.StabilityScore),
			fmt.Sprintf("%.3f", offer.Score),
			selected,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetAudit, cell, &row); err != nil {
			return fmt.Errorf("failed to write audit row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeStats(f *excelize.File, result *engine.Result) error {
	if _, err := f.NewSheet(sheetStats); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetStats, err)
	}

	stats := result.Stats
	rows := [][]interface{}{
		{"生成时间", result.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"订单总数", stats.OrderCount},
		{"分析明细行数", stats.RecordCount},
		{"涉及物料数", stats.DistinctMaterials},
		{"订单总金额(RMB)", stats.TotalOrderAmount.StringFixed(amountDigits)},
		{"缺料总金额(RMB)", stats.TotalShortageAmount.StringFixed(amountDigits)},
		{"无需投入订单数", stats.NoInvestmentOrders},
	}
	if stats.AverageROI != nil {
		rows = append(rows, []interface{}{"平均ROI", stats.AverageROI.StringFixed(amountDigits)})
	}

	tiers := make([]string, 0, len(stats.TierCounts))
	for tier := range stats.TierCounts {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		rows = append(rows, []interface{}{"完整度 " + tier, stats.TierCounts[domain.CompletenessTier(tier)]})
	}

	for i := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheetStats, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write stats row %d: %w", i+1, err)
		}
	}
	return nil
}

func decimalCell(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.StringFixed(amountDigits)
}

func stringCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}

// ReportKey names an uploaded report object with a run timestamp.
func ReportKey(generatedAt time.Time) string {
	return fmt.Sprintf("reports/pmc-analysis-%s.xlsx", generatedAt.Format("20060102-150405"))
}
