package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yingtu-pmc/analyzer-go/internal/cache"
	"github.com/yingtu-pmc/analyzer-go/internal/engine"
	"github.com/yingtu-pmc/analyzer-go/internal/ingest"
	"github.com/yingtu-pmc/analyzer-go/internal/report"
	"github.com/yingtu-pmc/analyzer-go/internal/storage"
)

// AnalysisService runs analyses and holds the latest result in memory for
// the API. Results are ephemeral; a new run fully replaces the previous one.
type AnalysisService struct {
	engine  *engine.Engine
	cache   cache.RunStatsCache
	storage storage.ObjectStorage

	mu     sync.RWMutex
	latest *engine.Result
}

func NewAnalysisService(eng *engine.Engine, cacheImpl cache.RunStatsCache, store storage.ObjectStorage) *AnalysisService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRunStatsCache()
	}
	return &AnalysisService{engine: eng, cache: cacheImpl, storage: store}
}

// Run executes one analysis over the given source files and retains the
// result as the latest.
func (s *AnalysisService) Run(ctx context.Context, loader *ingest.Loader) (*engine.Result, error) {
	tables, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Run(ctx, tables)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	if err := s.cache.SetStats(ctx, &result.Stats); err != nil {
		log.Warn().Err(err).Msg("analysis: cache set stats failed")
	}

	return result, nil
}

// RunFromStorage downloads the four source objects into localDir first,
// then runs the analysis over the downloaded copies.
func (s *AnalysisService) RunFromStorage(ctx context.Context, keys SourceKeys, localDir string) (*engine.Result, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	loader := &ingest.Loader{OrderCurrency: keys.OrderCurrency}
	downloads := []struct {
		key  string
		dest *string
	}{
		{keys.Orders, &loader.OrdersPath},
		{keys.Shortages, &loader.ShortagesPath},
		{keys.Inventory, &loader.InventoryPath},
		{keys.Suppliers, &loader.SuppliersPath},
	}
	for _, dl := range downloads {
		dest := filepath.Join(localDir, filepath.Base(dl.key))
		if err := s.storage.DownloadObject(ctx, dl.key, dest); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", dl.key, err)
		}
		*dl.dest = dest
	}

	return s.Run(ctx, loader)
}

// SourceKeys names the four source objects in the bucket.
type SourceKeys struct {
	Orders        string
	Shortages     string
	Inventory     string
	Suppliers     string
	OrderCurrency string
}

// Latest returns the most recent result, if any run has completed.
func (s *AnalysisService) Latest() (*engine.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Stats returns the latest run's headline figures, preferring the cache.
func (s *AnalysisService) Stats(ctx context.Context) (*engine.RunStats, bool, error) {
	if stats, ok, err := s.cache.GetStats(ctx); err == nil && ok {
		return stats, true, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analysis: cache get stats failed")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, false, nil
	}
	stats := s.latest.Stats
	return &stats, true, nil
}

// ExportReport renders the latest result as a workbook, writes it under
// reportDir and, when object storage is configured, uploads it as well.
// It returns the local path.
func (s *AnalysisService) ExportReport(ctx context.Context, reportDir string) (string, error) {
	result, ok := s.Latest()
	if !ok {
		return "", fmt.Errorf("no analysis has run yet")
	}

	data, err := report.Write(result)
	if err != nil {
		return "", err
	}

	key := report.ReportKey(result.GeneratedAt)
	path := filepath.Join(reportDir, filepath.Base(key))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", path, err)
	}

	if s.storage != nil {
		if err := s.storage.UploadObject(ctx, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("analysis: report upload failed")
		} else {
			log.Info().Str("key", key).Msg("analysis report uploaded")
		}
	}

	return path, nil
}
