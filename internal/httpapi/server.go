package httpapi

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/osgrady/radreport/internal/render"
	"github.com/osgrady/radreport/internal/report"
	"github.com/osgrady/radreport/internal/reportstore"
)

// Server exposes the report pipeline over HTTP. The archive store is
// optional; without it batch endpoints still work but nothing persists
// and lookup endpoints return 404.
type Server struct {
	orch  *report.Orchestrator
	coord *report.BatchCoordinator
	store *reportstore.Store
	pdf   *render.ChromiumPDFRenderer
}

func NewServer(orch *report.Orchestrator, store *reportstore.Store) http.Handler {
	s := &Server{
		orch:  orch,
		coord: report.NewBatchCoordinator(orch),
		store: store,
		pdf:   render.NewChromiumPDFRenderer(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/reports", s.handleReports)
	mux.HandleFunc("/v1/batches", s.handleBatches)
	mux.HandleFunc("/v1/batches/", s.handleBatchByID)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"ok":    false,
		"error": map[string]any{"message": message},
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

type reportResponse struct {
	Label      string                 `json:"label"`
	Text       string                 `json:"text"`
	Impression string                 `json:"impression"`
	Degraded   bool                   `json:"degraded"`
	Sections   []report.SectionResult `json:"sections"`
}

func toReportResponse(rep report.CaseReport) reportResponse {
	return reportResponse{
		Label:      rep.Label,
		Text:       rep.Text,
		Impression: rep.Impression,
		Degraded:   rep.Degraded,
		Sections:   rep.Sections,
	}
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, 400, "read body: "+err.Error())
		return
	}
	var req struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, 400, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, 400, "text is required")
		return
	}

	rep := s.orch.ProcessCase(r.Context(), req.Text, req.Label)

	switch strings.TrimSpace(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, 200, map[string]any{"ok": true, "report": toReportResponse(rep)})
	case "html":
		doc, err := render.BuildHTML(report.BuildReportMarkdown(s.orch.Config(), rep), rep.Degraded)
		if err != nil {
			writeError(w, 500, "render html: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(doc))
	case "pdf":
		pdf, err := s.pdf.Render(r.Context(), report.BuildReportMarkdown(s.orch.Config(), rep), rep.Degraded)
		if err != nil {
			writeError(w, 500, "render pdf: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(200)
		_, _ = w.Write(pdf)
	default:
		writeError(w, 400, "unknown format")
	}
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		blob, err := readBody(r)
		if err != nil {
			writeError(w, 400, "read body: "+err.Error())
			return
		}
		var req struct {
			Cases []struct {
				Label string `json:"label"`
				Text  string `json:"text"`
			} `json:"cases"`
		}
		if err := json.Unmarshal(blob, &req); err != nil {
			writeError(w, 400, "invalid json: "+err.Error())
			return
		}
		if len(req.Cases) == 0 {
			writeError(w, 400, "cases is required")
			return
		}

		inputs := make([]report.CaseInput, len(req.Cases))
		for i, c := range req.Cases {
			label := strings.TrimSpace(c.Label)
			if label == "" {
				label = strconv.Itoa(i + 1)
			}
			inputs[i] = report.CaseInput{Label: label, Text: c.Text}
		}

		batch := s.coord.ProcessBatch(r.Context(), inputs)
		artifact := report.BuildBatchArtifact(batch)

		reports := make([]reportResponse, len(batch.Entries))
		for i, e := range batch.Entries {
			reports[i] = toReportResponse(e.Report)
		}
		payload := map[string]any{"ok": true, "artifact": artifact, "reports": reports}

		if s.store != nil {
			batchID, err := s.store.SaveBatch(batch, artifact)
			if err != nil {
				writeError(w, 500, "archive batch: "+err.Error())
				return
			}
			payload["batch_id"] = batchID
		}
		writeJSON(w, 200, payload)
	case http.MethodGet:
		if s.store == nil {
			writeError(w, 404, "archive not configured")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		batches, err := s.store.ListBatches(limit)
		if err != nil {
			writeError(w, 500, "list batches: "+err.Error())
			return
		}
		writeJSON(w, 200, map[string]any{"batches": batches})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleBatchByID(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		writeError(w, 404, "archive not configured")
		return
	}
	idStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/batches/"), "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rec, err := s.store.GetBatch(id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, 404, "batch not found")
			return
		}
		writeError(w, 500, "get batch: "+err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"batch": rec})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":       true,
		"archive":  s.store != nil,
		"sections": len(s.orch.Config().CanonicalKeys),
	})
}
