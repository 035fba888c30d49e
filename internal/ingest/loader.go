package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
)

// Loader bundles the four source file paths for one analysis run.
type Loader struct {
	OrdersPath    string
	ShortagesPath string
	InventoryPath string
	SuppliersPath string

	// OrderCurrency tags order amounts when the order export carries no
	// currency column of its own.
	OrderCurrency string
}

// Load reads the four sources concurrently and returns the assembled
// snapshot. Any single failure cancels the remaining loads.
func (l *Loader) Load(ctx context.Context) (domain.Tables, error) {
	var tables domain.Tables

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := LoadOrders(l.OrdersPath, l.OrderCurrency)
		if err != nil {
			return err
		}
		tables.Orders = orders
		return nil
	})
	g.Go(func() error {
		lines, err := LoadShortages(l.ShortagesPath)
		if err != nil {
			return err
		}
		tables.Shortages = lines
		return nil
	})
	g.Go(func() error {
		prices, err := LoadInventory(l.InventoryPath)
		if err != nil {
			return err
		}
		tables.InventoryPrices = prices
		return nil
	})
	g.Go(func() error {
		offers, err := LoadSuppliers(l.SuppliersPath)
		if err != nil {
			return err
		}
		tables.SupplierOffers = offers
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Tables{}, err
	}
	return tables, nil
}
