package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/datadeck/internal/analysis"
	"github.com/KaramelBytes/datadeck/internal/apperr"
)

const (
	// multipartSlack covers the multipart envelope around the file part.
	multipartSlack = 1 << 20
	maxJSONBody    = 1 << 20
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.svc.MaxUploadBytes()
	if r.ContentLength > limit+multipartSlack {
		s.writeError(w, apperr.New(apperr.CodePayloadTooLarge, "file exceeds the %d MiB limit", limit>>20), 0)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, apperr.New(apperr.CodePayloadTooLarge, "file exceeds the %d MiB limit", limit>>20), 0)
			return
		}
		s.writeError(w, apperr.Wrap(apperr.CodeNoFileProvided, err, "no file provided"), 0)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, apperr.New(apperr.CodeNoFileProvided, "no file provided"), 0)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		s.writeError(w, apperr.Wrap(apperr.CodeInternal, err, "read upload"), 0)
		return
	}
	res, err := s.svc.Upload(r.Context(), sessionID(r), header.Filename, content)
	if err != nil {
		s.writeError(w, err, 0)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGenerateChart(w http.ResponseWriter, r *http.Request) {
	var req analysis.ChartRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, apperr.Wrap(apperr.CodeInvalidRequest, err, "invalid chart request body"), 0)
		return
	}
	res, err := s.svc.GenerateChart(r.Context(), sessionID(r), req)
	if err != nil {
		s.writeError(w, err, 0)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, apperr.New(apperr.CodeInvalidRequest, "limit must be a positive integer"), 0)
			return
		}
		limit = n
	}
	res, err := s.svc.Preview(r.Context(), sessionID(r), limit)
	if err != nil {
		s.writeError(w, err, 0)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Stats(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, err, 0)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	cleared := s.svc.Clear(sessionID(r))
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true, "cleared": cleared})
}
