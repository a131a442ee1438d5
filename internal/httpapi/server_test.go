package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osgrady/radreport/internal/genclient"
	"github.com/osgrady/radreport/internal/report"
	"github.com/osgrady/radreport/internal/reportstore"
)

type stubGen struct {
	fn func(instructions, content string) genclient.CallResult
}

func (s *stubGen) Generate(ctx context.Context, instructions, content string) genclient.CallResult {
	if s.fn != nil {
		return s.fn(instructions, content)
	}
	return genclient.CallResult{Text: "ok", Status: genclient.StatusSuccess, Attempts: 1}
}

func pipelineGen(cfg report.Config) *stubGen {
	return &stubGen{fn: func(instructions, content string) genclient.CallResult {
		switch instructions {
		case cfg.SegmenterInstructions:
			return genclient.CallResult{
				Text:     `{"liver": "Bright Liver", "others": [], "comment": ""}`,
				Status:   genclient.StatusSuccess,
				Attempts: 1,
			}
		case cfg.ImpressionInstructions:
			return genclient.CallResult{Text: "Fatty liver.", Status: genclient.StatusSuccess, Attempts: 1}
		default:
			return genclient.CallResult{Text: "The liver is echogenic.", Status: genclient.StatusSuccess, Attempts: 1}
		}
	}}
}

func newServerForTest(t *testing.T, store *reportstore.Store) http.Handler {
	t.Helper()
	cfg := report.DefaultConfig()
	orch, err := report.NewOrchestrator(pipelineGen(cfg), cfg)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return NewServer(orch, store)
}

func newTestStore(t *testing.T) *reportstore.Store {
	t.Helper()
	s, err := reportstore.New(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	blob, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func getPath(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPostReportReturnsJSON(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := postJSON(t, h, "/v1/reports", map[string]any{"label": "7", "text": "Liver: Bright Liver"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		OK     bool `json:"ok"`
		Report struct {
			Label      string `json:"label"`
			Text       string `json:"text"`
			Impression string `json:"impression"`
		} `json:"report"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || out.Report.Label != "7" {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
	if !strings.Contains(out.Report.Text, "RADIOLOGY REPORT") {
		t.Fatalf("report text missing template: %q", out.Report.Text)
	}
	if out.Report.Impression != "Fatty liver." {
		t.Fatalf("impression lost: %q", out.Report.Impression)
	}
}

func TestPostReportHTMLFormat(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := postJSON(t, h, "/v1/reports?format=html", map[string]any{"text": "Liver: Bright Liver"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "RADIOLOGY REPORT") {
		t.Fatalf("html missing title: %s", rr.Body.String())
	}
}

func TestPostReportRejectsEmptyText(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := postJSON(t, h, "/v1/reports", map[string]any{"text": "   "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPostBatchProcessesAndArchives(t *testing.T) {
	store := newTestStore(t)
	h := newServerForTest(t, store)

	rr := postJSON(t, h, "/v1/batches", map[string]any{"cases": []map[string]any{
		{"label": "1", "text": "Liver: Bright Liver"},
		{"text": "Liver: NP"},
	}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		OK       bool   `json:"ok"`
		BatchID  int64  `json:"batch_id"`
		Artifact string `json:"artifact"`
		Reports  []struct {
			Label string `json:"label"`
		} `json:"reports"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || out.BatchID == 0 {
		t.Fatalf("batch not archived: %s", rr.Body.String())
	}
	if len(out.Reports) != 2 || out.Reports[0].Label != "1" || out.Reports[1].Label != "2" {
		t.Fatalf("labels wrong (missing labels default to the 1-based index): %+v", out.Reports)
	}
	if !strings.Contains(out.Artifact, "PATIENT 1\n") || !strings.Contains(out.Artifact, "PATIENT 2\n") {
		t.Fatalf("artifact banners missing: %q", out.Artifact)
	}

	// The archived batch must be retrievable.
	get := getPath(t, h, "/v1/batches/1")
	if get.Code != http.StatusOK {
		t.Fatalf("get batch status=%d body=%s", get.Code, get.Body.String())
	}
}

func TestPostBatchRejectsEmptyCases(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := postJSON(t, h, "/v1/batches", map[string]any{"cases": []any{}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestBatchLookupWithoutArchive(t *testing.T) {
	h := newServerForTest(t, nil)
	if rr := getPath(t, h, "/v1/batches"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without archive, got %d", rr.Code)
	}
	if rr := getPath(t, h, "/v1/batches/1"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without archive, got %d", rr.Code)
	}
}

func TestListBatches(t *testing.T) {
	store := newTestStore(t)
	h := newServerForTest(t, store)

	rr := postJSON(t, h, "/v1/batches", map[string]any{"cases": []map[string]any{{"text": "Liver: NP"}}})
	if rr.Code != http.StatusOK {
		t.Fatalf("post batch: %d %s", rr.Code, rr.Body.String())
	}

	list := getPath(t, h, "/v1/batches?limit=5")
	if list.Code != http.StatusOK {
		t.Fatalf("list status=%d", list.Code)
	}
	var out struct {
		Batches []struct {
			BatchID int64 `json:"BatchID"`
		} `json:"batches"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(out.Batches))
	}
}

func TestHealth(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := getPath(t, h, "/v1/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var out struct {
		OK       bool `json:"ok"`
		Archive  bool `json:"archive"`
		Sections int  `json:"sections"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || out.Archive || out.Sections != 6 {
		t.Fatalf("unexpected health payload: %s", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newServerForTest(t, nil)
	if rr := getPath(t, h, "/v1/reports"); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
