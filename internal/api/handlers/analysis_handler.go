package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yingtu-pmc/analyzer-go/internal/domain"
	"github.com/yingtu-pmc/analyzer-go/internal/engine"
	"github.com/yingtu-pmc/analyzer-go/internal/ingest"
	"github.com/yingtu-pmc/analyzer-go/internal/service"
)

type AnalysisHandler struct {
	service   *service.AnalysisService
	inputDir  string
	reportDir string
}

func NewAnalysisHandler(service *service.AnalysisService, inputDir, reportDir string) *AnalysisHandler {
	return &AnalysisHandler{service: service, inputDir: inputDir, reportDir: reportDir}
}

// RunRequest names the source files for one analysis run. Relative paths
// resolve against the configured input directory; omitted fields fall back
// to the conventional file names.
type RunRequest struct {
	Orders        string `json:"orders"`
	Shortages     string `json:"shortages"`
	Inventory     string `json:"inventory"`
	Suppliers     string `json:"suppliers"`
	OrderCurrency string `json:"order_currency"`
}

func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	loader := &ingest.Loader{
		OrdersPath:    h.resolve(req.Orders, "orders.xlsx"),
		ShortagesPath: h.resolve(req.Shortages, "mat_owe_pso.xlsx"),
		InventoryPath: h.resolve(req.Inventory, "inventory_list.xlsx"),
		SuppliersPath: h.resolve(req.Suppliers, "supplier.xlsx"),
		OrderCurrency: req.OrderCurrency,
	}

	result, err := h.service.Run(c.Request.Context(), loader)
	if err != nil {
		c.JSON(statusForRunError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_at": result.GeneratedAt,
		"stats":        result.Stats,
	})
}

// UploadAndRun accepts the source workbooks as a multipart form and runs
// the analysis over the uploaded copies. Form fields are named after the
// sources: orders, shortages, inventory, suppliers.
func (h *AnalysisHandler) UploadAndRun(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	loader := &ingest.Loader{OrderCurrency: c.Query("order_currency")}
	fields := []struct {
		name string
		dest *string
	}{
		{"orders", &loader.OrdersPath},
		{"shortages", &loader.ShortagesPath},
		{"inventory", &loader.InventoryPath},
		{"suppliers", &loader.SuppliersPath},
	}
	for _, field := range fields {
		files := form.File[field.name]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field " + field.name})
			return
		}
		file := files[0]
		path := filepath.Join(h.inputDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, path); err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save " + file.Filename})
			return
		}
		*field.dest = path
	}

	result, err := h.service.Run(c.Request.Context(), loader)
	if err != nil {
		c.JSON(statusForRunError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_at": result.GeneratedAt,
		"stats":        result.Stats,
	})
}

func (h *AnalysisHandler) GetSummaries(c *gin.Context) {
	result, ok := h.service.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis has run yet"})
		return
	}

	summaries := result.Summaries
	if tier := strings.TrimSpace(c.Query("tier")); tier != "" {
		filtered := make([]domain.OrderSummary, 0, len(summaries))
		for _, s := range summaries {
			if string(s.Tier) == tier {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}

	page, size := pagination(c)
	total := len(summaries)
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"page":      page,
		"page_size": size,
		"summaries": paginate(summaries, page, size),
	})
}

func (h *AnalysisHandler) GetRecords(c *gin.Context) {
	result, ok := h.service.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis has run yet"})
		return
	}

	records := result.Records
	if orderID := strings.TrimSpace(c.Query("production_order")); orderID != "" {
		filtered := make([]domain.IntegratedRecord, 0, 8)
		for _, r := range records {
			if r.ProductionOrderID == orderID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if tier := strings.TrimSpace(c.Query("tier")); tier != "" {
		filtered := make([]domain.IntegratedRecord, 0, len(records))
		for _, r := range records {
			if string(r.Tier) == tier {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	page, size := pagination(c)
	c.JSON(http.StatusOK, gin.H{
		"total":     len(records),
		"page":      page,
		"page_size": size,
		"records":   paginate(records, page, size),
	})
}

func (h *AnalysisHandler) GetSupplierAudit(c *gin.Context) {
	result, ok := h.service.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis has run yet"})
		return
	}

	audit := result.SupplierAudit
	if materialID := strings.TrimSpace(c.Query("material_id")); materialID != "" {
		filtered := make([]engine.ScoredOffer, 0, 4)
		for _, offer := range audit {
			if offer.MaterialID == materialID {
				filtered = append(filtered, offer)
			}
		}
		audit = filtered
	}

	c.JSON(http.StatusOK, gin.H{"offers": audit})
}

func (h *AnalysisHandler) GetStats(c *gin.Context) {
	stats, ok, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis has run yet"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalysisHandler) ExportReport(c *gin.Context) {
	path, err := h.service.ExportReport(c.Request.Context(), h.reportDir)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (h *AnalysisHandler) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.inputDir, path)
}

func pagination(c *gin.Context) (int, int) {
	page := 1
	size := 50
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && v > 0 {
		size = v
	}
	return page, size
}

func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// statusForRunError maps analysis failures to HTTP statuses: bad input data
// and configuration are client errors, capacity is a payload-too-large.
func statusForRunError(err error) int {
	var cfgErr *engine.ConfigurationError
	var schemaErr *engine.SchemaViolationError
	var capErr *engine.CapacityExceededError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &capErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
