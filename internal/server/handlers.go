package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"qahub/internal/logging"
	"qahub/internal/report"
	"qahub/internal/session"
	"qahub/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.ServerError("failed to encode response: %v", err)
	}
}

// writeError maps session errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrProjectNotFound),
		errors.Is(err, session.ErrCaseNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		logging.ServerError("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid request body: %v", err)
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSaveAll(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Save(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names := s.session.ProjectNames()
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string][]string{"projects": names})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.session.Snapshot(r.PathValue("name"))
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", session.ErrProjectNotFound, r.PathValue("name")))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.session.DeleteProject(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	Requirement string `json:"requirement"`
	Platform    string `json:"platform"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Requirement) == "" {
		badRequest(w, "requirement is required")
		return
	}

	p, err := s.session.GenerateAudit(r.Context(), r.PathValue("name"), req.Requirement, req.Platform)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.session.SaveProject(p.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	clean, err := s.session.CleanStrategy(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"strategy": clean})
}

func (s *Server) handleBugs(w http.ResponseWriter, r *http.Request) {
	bugs, err := s.session.Bugs(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]types.TestCase{"bugs": bugs})
}

func (s *Server) handleEditCase(w http.ResponseWriter, r *http.Request) {
	var edit session.CaseEdit
	if !decodeBody(w, r, &edit) {
		return
	}
	if err := s.session.EditCase(r.PathValue("name"), r.PathValue("id"), edit); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.session.SetStatus(r.PathValue("name"), r.PathValue("id"), types.Status(req.Status))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case errors.Is(err, session.ErrProjectNotFound), errors.Is(err, session.ErrCaseNotFound):
		writeError(w, err)
	default:
		badRequest(w, "%v", err)
	}
}

type evidenceRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	var req evidenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		badRequest(w, "url is required")
		return
	}
	if err := s.session.AttachEvidence(r.PathValue("name"), r.PathValue("id"), req.URL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "attached"})
}

func (s *Server) handleDraftBug(w http.ResponseWriter, r *http.Request) {
	draft, err := s.session.DraftBugReport(r.Context(), r.PathValue("name"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"draft": draft})
}

func (s *Server) handleMailto(w http.ResponseWriter, r *http.Request) {
	name, id := r.PathValue("name"), r.PathValue("id")
	p, ok := s.session.Snapshot(name)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", session.ErrProjectNotFound, name))
		return
	}
	tc := p.FindCase(id)
	if tc == nil {
		writeError(w, fmt.Errorf("%w: %s", session.ErrCaseNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"link": report.MailtoLink(r.URL.Query().Get("to"), name, *tc),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, ok := s.session.Snapshot(name)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", session.ErrProjectNotFound, name))
		return
	}

	var err error
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", name))
		err = report.WriteJSON(w, p)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
		err = report.WriteCSV(w, p)
	case "jira":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = report.WriteJiraBugs(w, p)
	default:
		badRequest(w, "unknown export format %q", format)
		return
	}
	if err != nil {
		logging.ServerError("export of %q failed mid-stream: %v", name, err)
	}
}
