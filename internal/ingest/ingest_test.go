package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/engine"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func TestLoadOrdersCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.csv",
		"生 產 單 号(  廠方 ),客户订单号,产品型号,数量Pcs,订单金额\n"+
			"2509000123,C-100,YT-8,120,8054.42\n"+
			",C-999,YT-9,10,50\n"+
			"2509000124,C-101,YT-8,\"1,000\",\n")

	orders, err := LoadOrders(path, "USD")
	if err != nil {
		t.Fatalf("LoadOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2 (blank key dropped)", len(orders))
	}

	first := orders[0]
	if first.ProductionOrderID != "2509000123" || first.CustomerOrderID != "C-100" {
		t.Errorf("keys = %s / %s", first.ProductionOrderID, first.CustomerOrderID)
	}
	if first.OrderAmount == nil || !first.OrderAmount.Amount.Equal(decimal.RequireFromString("8054.42")) {
		t.Fatalf("amount = %+v, want 8054.42", first.OrderAmount)
	}
	if first.OrderAmount.Currency != "USD" {
		t.Errorf("currency = %s, want the USD default", first.OrderAmount.Currency)
	}

	second := orders[1]
	if second.Quantity != 1000 {
		t.Errorf("quantity = %d, want 1000 with separator stripped", second.Quantity)
	}
	if second.OrderAmount != nil {
		t.Errorf("blank amount parsed as %+v, want nil", second.OrderAmount)
	}
}

func TestLoadOrdersLeadingZerosSurvive(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.csv",
		"生产单号,客户订单号\n0012509,C-1\n")

	orders, err := LoadOrders(path, "")
	if err != nil {
		t.Fatalf("LoadOrders: %v", err)
	}
	if orders[0].ProductionOrderID != "0012509" {
		t.Errorf("order id = %s, want 0012509 untouched", orders[0].ProductionOrderID)
	}
}

func TestLoadOrdersMissingKeyColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.csv",
		"客户订单号,产品型号\nC-1,YT-8\n")

	_, err := LoadOrders(path, "")
	var schemaErr *engine.SchemaViolationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaViolationError, got %v", err)
	}
	if schemaErr.Table != "orders" {
		t.Errorf("table = %s, want orders", schemaErr.Table)
	}
}

func TestLoadShortages(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shortage.csv",
		"欠料表导出\n"+
			"订单编号,物料编号,物料名称,工单需求,仓存不足\n"+
			"2509000123,M-1,connector,500,120\n"+
			"2509000123,,unnamed part,10,10\n"+
			"2509000124,M-2,已齐套,0,0\n"+
			",M-3,orphan,5,5\n")

	lines, err := LoadShortages(path)
	if err != nil {
		t.Fatalf("LoadShortages: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 (kitted and blank-key rows dropped)", len(lines))
	}

	if lines[0].MaterialID == nil || *lines[0].MaterialID != "M-1" {
		t.Errorf("material = %v, want M-1", lines[0].MaterialID)
	}
	if !lines[0].ShortageQuantity.Equal(decimal.NewFromInt(120)) {
		t.Errorf("shortage qty = %s, want 120", lines[0].ShortageQuantity)
	}

	// The blank material column loads as null, not as an empty-string id.
	if lines[1].MaterialID != nil {
		t.Errorf("material = %q, want nil", *lines[1].MaterialID)
	}
}

func TestLoadInventoryPriceFallback(t *testing.T) {
	path := writeFile(t, t.TempDir(), "inventory.csv",
		"物料编号,最新報價,成本單價,貨幣\n"+
			"M-1,9.80,8.00,RMB\n"+
			"M-2,,6.50,USD\n"+
			"M-3,,,RMB\n")

	prices, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("prices = %d, want 2 (unpriced row dropped)", len(prices))
	}
	if !prices[0].UnitPrice.Amount.Equal(decimal.RequireFromString("9.80")) {
		t.Errorf("M-1 price = %s, want the latest quote 9.80", prices[0].UnitPrice.Amount)
	}
	if !prices[1].UnitPrice.Amount.Equal(decimal.RequireFromString("6.50")) {
		t.Errorf("M-2 price = %s, want the cost fallback 6.50", prices[1].UnitPrice.Amount)
	}
	if prices[1].UnitPrice.Currency != "USD" {
		t.Errorf("M-2 currency = %s, want USD", prices[1].UnitPrice.Currency)
	}
}

func TestLoadSuppliers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "supplier.csv",
		"物料编号,供应商号,供应商名称,单价,币种,修改日期,稳定性得分\n"+
			"M-1,S-1,Acme,9.50,RMB,2025-08-10,0.9\n"+
			"M-1,S-2,Budget,9.90,RMB,not a date,1.7\n")

	offers, err := LoadSuppliers(path)
	if err != nil {
		t.Fatalf("LoadSuppliers: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(offers))
	}
	if offers[0].LastModifiedAt == nil {
		t.Error("parseable date loaded as nil")
	}
	if offers[1].LastModifiedAt != nil {
		t.Errorf("garbage date loaded as %v, want nil", offers[1].LastModifiedAt)
	}
	if offers[1].StabilityScore != 1 {
		t.Errorf("stability = %f, want clamp to 1", offers[1].StabilityScore)
	}
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	loader := &Loader{
		OrdersPath: writeFile(t, dir, "orders.csv",
			"生产单号,客户订单号,订单金额\n2509000123,C-100,3000\n"),
		ShortagesPath: writeFile(t, dir, "shortage.csv",
			"banner\n订单编号,物料编号,物料名称,仓存不足\n2509000123,M-1,connector,100\n"),
		InventoryPath: writeFile(t, dir, "inventory.csv",
			"物料编号,最新報價\nM-1,9.80\n"),
		SuppliersPath: writeFile(t, dir, "supplier.csv",
			"物料编号,供应商号,单价\nM-1,S-1,9.50\n"),
	}

	tables, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.Orders) != 1 || len(tables.Shortages) != 1 ||
		len(tables.InventoryPrices) != 1 || len(tables.SupplierOffers) != 1 {
		t.Errorf("table sizes = %d/%d/%d/%d, want 1 each",
			len(tables.Orders), len(tables.Shortages), len(tables.InventoryPrices), len(tables.SupplierOffers))
	}
}

func TestLoaderLoadPropagatesFailure(t *testing.T) {
	dir := t.TempDir()
	loader := &Loader{
		OrdersPath: filepath.Join(dir, "missing.csv"),
		ShortagesPath: writeFile(t, dir, "shortage.csv",
			"banner\n订单编号\n2509000123\n"),
		InventoryPath: writeFile(t, dir, "inventory.csv", "物料编号\nM-1\n"),
		SuppliersPath: writeFile(t, dir, "supplier.csv", "物料编号,供应商号\nM-1,S-1\n"),
	}

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing orders file")
	}
}

func TestMonthLabel(t *testing.T) {
	tests := []struct{ sheet, want string }{
		{"8月", "8月"},
		{"9月 -柬", "9月"},
		{"8月-国内", "8月"},
		{" Sheet1 ", "Sheet1"},
	}
	for _, tt := range tests {
		if got := monthLabel(tt.sheet); got != tt.want {
			t.Errorf("monthLabel(%q) = %q, want %q", tt.sheet, got, tt.want)
		}
	}
}
