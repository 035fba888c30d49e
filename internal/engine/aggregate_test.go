package engine

import (
	"testing"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

func TestSummarizeNoDoubleCounting(t *testing.T) {
	// Three shortage lines of the same order all repeat the order amount;
	// the summary must carry it once.
	amount := decPtr(t, "1000")
	records := []domain.IntegratedRecord{
		{ProductionOrderID: "PO-1", CustomerOrderID: "C-1", OrderAmountReporting: amount, HasShortage: true, LineAmount: d(t, "100")},
		{ProductionOrderID: "PO-1", CustomerOrderID: "C-1", OrderAmountReporting: amount, HasShortage: true, LineAmount: d(t, "200")},
		{ProductionOrderID: "PO-1", CustomerOrderID: "C-1", OrderAmountReporting: amount, HasShortage: true, LineAmount: d(t, "50")},
	}

	summaries := summarize(records, DefaultConfig())
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}

	s := summaries[0]
	if !s.OrderAmount.Equal(d(t, "1000")) {
		t.Errorf("order amount = %s, want 1000", s.OrderAmount)
	}
	if !s.TotalShortageAmount.Equal(d(t, "350")) {
		t.Errorf("shortage total = %s, want 350", s.TotalShortageAmount)
	}
	if s.ShortageLineCount != 3 {
		t.Errorf("shortage line count = %d, want 3", s.ShortageLineCount)
	}
}

func TestSummarizeOneToManyCustomerOrders(t *testing.T) {
	records := []domain.IntegratedRecord{
		{ProductionOrderID: "PO-1", CustomerOrderID: "C-1", OrderAmountReporting: decPtr(t, "8054.42")},
		{ProductionOrderID: "PO-1", CustomerOrderID: "C-2", OrderAmountReporting: decPtr(t, "8054.42")},
	}

	summaries := summarize(records, DefaultConfig())
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}

	s := summaries[0]
	if !s.OrderAmount.Equal(d(t, "16108.84")) {
		t.Errorf("order amount = %s, want 16108.84", s.OrderAmount)
	}
	if len(s.CustomerOrderIDs) != 2 {
		t.Errorf("customer orders = %v, want 2 entries", s.CustomerOrderIDs)
	}
}

func TestSummarizeFirstAmountPerGroupWins(t *testing.T) {
	records := []domain.IntegratedRecord{
		{ProductionOrderID: "PO-1", CustomerOrderID: "C-1", OrderAmountReporting: decPtr(t, "700")},
		{ProductionOrderID: "PO-1", CustomerOrderID: "C-1", OrderAmountReporting: decPtr(t, "999")},
	}

	summaries := summarize(records, DefaultConfig())
	if !summaries[0].OrderAmount.Equal(d(t, "700")) {
		t.Errorf("order amount = %s, want the first seen 700", summaries[0].OrderAmount)
	}
}

func TestSummarizePreservesInputOrder(t *testing.T) {
	records := []domain.IntegratedRecord{
		{ProductionOrderID: "PO-C"},
		{ProductionOrderID: "PO-A"},
		{ProductionOrderID: "PO-B"},
		{ProductionOrderID: "PO-A"},
	}

	summaries := summarize(records, DefaultConfig())
	want := []string{"PO-C", "PO-A", "PO-B"}
	if len(summaries) != len(want) {
		t.Fatalf("summaries = %d, want %d", len(summaries), len(want))
	}
	for i, id := range want {
		if summaries[i].ProductionOrderID != id {
			t.Errorf("summary[%d] = %s, want %s", i, summaries[i].ProductionOrderID, id)
		}
	}
}

func TestSummarizeTierFromFirstRecord(t *testing.T) {
	records := []domain.IntegratedRecord{
		{ProductionOrderID: "PO-1", Tier: domain.TierComplete},
		{ProductionOrderID: "PO-1", Tier: domain.TierOrderInfoIncomplete},
	}

	summaries := summarize(records, DefaultConfig())
	if summaries[0].Tier != domain.TierComplete {
		t.Errorf("tier = %s, want %s", summaries[0].Tier, domain.TierComplete)
	}
}
