package engine

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

// buildRecords runs the three left joins that expand the order table into
// the line-grain analysis table:
//
//  1. orders x shortage lines on production order id (one-to-many fan-out)
//  2. result x inventory price on material id (at most one match)
//  3. result x selected supplier offer on material id (at most one match)
//
// Every order row survives: an order with no shortage lines produces exactly
// one record with the shortage fields empty. Row counts only ever grow.
func buildRecords(ctx context.Context, cfg Config, conv *Converter, tables domain.Tables, selected map[string]*domain.SelectedOffer) ([]domain.IntegratedRecord, error) {
	shortagesByOrder := indexShortages(tables.Shortages)

	inventory, err := indexInventory(tables.InventoryPrices, conv)
	if err != nil {
		return nil, err
	}

	records := make([]domain.IntegratedRecord, 0, len(tables.Orders))

	for _, order := range tables.Orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		orderID := strings.TrimSpace(order.ProductionOrderID)

		var amountReporting *decimal.Decimal
		if order.OrderAmount != nil {
			v, err := conv.ToReporting(*order.OrderAmount)
			if err != nil {
				return nil, err
			}
			amountReporting = &v
		}

		base := domain.IntegratedRecord{
			ProductionOrderID:    orderID,
			CustomerOrderID:      order.CustomerOrderID,
			ProductModel:         order.ProductModel,
			Quantity:             order.Quantity,
			Month:                order.Month,
			DeliveryDate:         order.DeliveryDate,
			OrderAmount:          order.OrderAmount,
			OrderAmountReporting: amountReporting,
		}

		lines := shortagesByOrder[orderID]
		if len(lines) == 0 {
			records = append(records, base)
			if len(records) > cfg.MaxJoinRows {
				return nil, &CapacityExceededError{Stage: "order-shortage join", Rows: len(records), Limit: cfg.MaxJoinRows}
			}
			continue
		}

		for _, line := range lines {
			rec := base
			rec.HasShortage = true
			rec.MaterialID = line.MaterialID
			rec.MaterialName = line.MaterialName
			rec.ShortageQuantity = line.ShortageQuantity

			if line.MaterialID != nil {
				materialID := strings.TrimSpace(*line.MaterialID)
				if price, ok := inventory[materialID]; ok {
					p := price
					rec.InventoryUnitPrice = &p
				}
				if offer, ok := selected[materialID]; ok {
					rec.Supplier = offer
				}
			}

			lineAmount, err := computeLineAmount(line, rec, conv)
			if err != nil {
				return nil, err
			}
			rec.LineAmount = lineAmount

			records = append(records, rec)
			if len(records) > cfg.MaxJoinRows {
				return nil, &CapacityExceededError{Stage: "order-shortage join", Rows: len(records), Limit: cfg.MaxJoinRows}
			}
		}
	}

	return records, nil
}

// computeLineAmount derives the shortage value of one line in the reporting
// currency. An explicit tagged amount on the source line wins; otherwise the
// quantity is priced with the selected supplier's unit price, falling back
// to the inventory price when no supplier matched.
func computeLineAmount(line domain.ShortageLine, rec domain.IntegratedRecord, conv *Converter) (decimal.Decimal, error) {
	if line.ShortageAmount != nil {
		return conv.ToReporting(*line.ShortageAmount)
	}

	var unitPrice decimal.Decimal
	switch {
	case rec.Supplier != nil && rec.Supplier.UnitPrice.Sign() > 0:
		unitPrice = rec.Supplier.UnitPrice
	case rec.InventoryUnitPrice != nil:
		unitPrice = *rec.InventoryUnitPrice
	default:
		return decimal.Decimal{}, nil
	}

	return line.ShortageQuantity.Mul(unitPrice), nil
}

// indexShortages groups shortage lines by trimmed production order id,
// preserving source order within each group.
func indexShortages(lines []domain.ShortageLine) map[string][]domain.ShortageLine {
	byOrder := make(map[string][]domain.ShortageLine)
	for _, line := range lines {
		orderID := strings.TrimSpace(line.ProductionOrderID)
		if orderID == "" {
			continue
		}
		byOrder[orderID] = append(byOrder[orderID], line)
	}
	return byOrder
}

// indexInventory maps material id to its reporting-currency unit price.
// A duplicated material keeps the first row so the price join can never fan
// the table out further.
func indexInventory(prices []domain.InventoryPrice, conv *Converter) (map[string]decimal.Decimal, error) {
	index := make(map[string]decimal.Decimal, len(prices))
	for _, price := range prices {
		materialID := strings.TrimSpace(price.MaterialID)
		if materialID == "" {
			continue
		}
		if _, dup := index[materialID]; dup {
			log.Warn().Str("material_id", materialID).Msg("duplicate inventory price row ignored")
			continue
		}
		converted, err := conv.ToReporting(price.UnitPrice)
		if err != nil {
			return nil, err
		}
		index[materialID] = converted
	}
	return index, nil
}
