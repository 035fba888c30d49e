package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/yingtu-pmc/analyzer-go/internal/cache"
	"github.com/yingtu-pmc/analyzer-go/internal/config"
	"github.com/yingtu-pmc/analyzer-go/internal/engine"
	"github.com/yingtu-pmc/analyzer-go/internal/ingest"
	"github.com/yingtu-pmc/analyzer-go/internal/service"
	"github.com/yingtu-pmc/analyzer-go/pkg/logger"
)

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "orders",
			Usage:   "Order workbook (xlsx or csv)",
			Value:   "orders.xlsx",
			EnvVars: []string{"ANALYZER_ORDERS"},
		},
		&cli.StringFlag{
			Name:    "shortages",
			Usage:   "Material shortage export",
			Value:   "mat_owe_pso.xlsx",
			EnvVars: []string{"ANALYZER_SHORTAGES"},
		},
		&cli.StringFlag{
			Name:    "inventory",
			Usage:   "Inventory price list",
			Value:   "inventory_list.xlsx",
			EnvVars: []string{"ANALYZER_INVENTORY"},
		},
		&cli.StringFlag{
			Name:    "suppliers",
			Usage:   "Supplier quote export",
			Value:   "supplier.xlsx",
			EnvVars: []string{"ANALYZER_SUPPLIERS"},
		},
		&cli.StringFlag{
			Name:    "order-currency",
			Usage:   "Currency to assume for untagged order amounts",
			Value:   "USD",
			EnvVars: []string{"ANALYZER_ORDER_CURRENCY"},
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analyzer",
		Usage: "Run the PMC shortage and ROI analysis over order, shortage, inventory and supplier exports",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run one analysis and write the report workbook",
				Flags:  append(sourceFlags(), &cli.StringFlag{
					Name:    "report-dir",
					Usage:   "Directory the report workbook is written to",
					EnvVars: []string{"APP_REPORT_DIR"},
				}),
				Action: runAnalysis,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analyzer failed")
	}
}

func runAnalysis(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	eng, err := engine.New(engineCfg)
	if err != nil {
		return err
	}

	svc := service.NewAnalysisService(eng, cache.NewNoopRunStatsCache(), nil)

	loader := &ingest.Loader{
		OrdersPath:    resolvePath(cfg.App.InputDir, c.String("orders")),
		ShortagesPath: resolvePath(cfg.App.InputDir, c.String("shortages")),
		InventoryPath: resolvePath(cfg.App.InputDir, c.String("inventory")),
		SuppliersPath: resolvePath(cfg.App.InputDir, c.String("suppliers")),
		OrderCurrency: c.String("order-currency"),
	}

	result, err := svc.Run(c.Context, loader)
	if err != nil {
		return err
	}

	reportDir := c.String("report-dir")
	if reportDir == "" {
		reportDir = cfg.App.ReportDir
	}
	path, err := svc.ExportReport(c.Context, reportDir)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Int("orders", result.Stats.OrderCount).
		Int("records", result.Stats.RecordCount).
		Str("report", path).
		Msg("analysis complete")

	fmt.Printf("analyzed %d orders across %d records, report at %s\n",
		result.Stats.OrderCount, result.Stats.RecordCount, path)
	return nil
}

func resolvePath(inputDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(inputDir, path)
}
