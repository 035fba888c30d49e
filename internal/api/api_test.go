package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yingtu-pmc/analyzer-go/internal/cache"
	"github.com/yingtu-pmc/analyzer-go/internal/engine"
	"github.com/yingtu-pmc/analyzer-go/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	inputDir := t.TempDir()
	fixtures := map[string]string{
		"orders.csv": "生产单号,客户订单号,订单金额\n" +
			"2509000123,C-100,3000\n" +
			"2509000124,C-101,\n",
		"shortage.csv": "banner\n订单编号,物料编号,物料名称,仓存不足\n" +
			"2509000123,M-1,connector,100\n",
		"inventory.csv": "物料编号,最新報價\nM-1,10\n",
		"supplier.csv":  "物料编号,供应商号,单价\nM-1,S-1,9.50\n",
	}
	for name, content := range fixtures {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}

	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	svc := service.NewAnalysisService(eng, cache.NewNoopRunStatsCache(), nil)

	router := NewRouter(svc, RouterConfig{
		InputDir:  inputDir,
		ReportDir: t.TempDir(),
	})
	return router, inputDir
}

func runAnalysis(t *testing.T, router *gin.Engine) {
	t.Helper()
	body := `{"orders":"orders.csv","shortages":"shortage.csv","inventory":"inventory.csv","suppliers":"supplier.csv"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("run status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRunAndSummaries(t *testing.T) {
	router, _ := newTestRouter(t)
	runAnalysis(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/summaries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("summaries status = %d", w.Code)
	}

	var resp struct {
		Total     int               `json:"total"`
		Summaries []json.RawMessage `json:"summaries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Summaries) != 2 {
		t.Errorf("total = %d with %d rows, want 2", resp.Total, len(resp.Summaries))
	}
}

func TestSummariesBeforeAnyRun(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/summaries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before any run", w.Code)
	}
}

func TestRecordsFilterByOrder(t *testing.T) {
	router, _ := newTestRouter(t)
	runAnalysis(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/records?production_order=2509000123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("records status = %d", w.Code)
	}

	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1 record for the filtered order", resp.Total)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	runAnalysis(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}

	var stats engine.RunStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.OrderCount != 2 || stats.RecordCount != 2 {
		t.Errorf("stats = %d orders / %d records, want 2 / 2", stats.OrderCount, stats.RecordCount)
	}
}

func TestRunWithMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"orders":"nope.csv"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for unreadable source", w.Code)
	}
}

func TestUploadAndRun(t *testing.T) {
	router, _ := newTestRouter(t)

	fixtures := map[string]string{
		"orders":    "生产单号,客户订单号,订单金额\n2509000123,C-100,3000\n",
		"shortages": "banner\n订单编号,物料编号,物料名称,仓存不足\n2509000123,M-1,connector,100\n",
		"inventory": "物料编号,最新報價\nM-1,10\n",
		"suppliers": "物料编号,供应商号,单价\nM-1,S-1,9.50\n",
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range fixtures {
		part, err := mw.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis/summaries", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("summaries after upload status = %d", w.Code)
	}
}

func TestUploadMissingField(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("orders", "orders.csv")
	part.Write([]byte("生产单号\nPO-1\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing source field", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}
