package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgallion1/doccheck/internal/config"
	"github.com/dgallion1/doccheck/internal/parser"
	"github.com/dgallion1/doccheck/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// formOverhead is allowed on top of the upload limit for multipart framing.
const formOverhead = 1 << 20

// requestError is a client error with its HTTP status.
type requestError struct {
	msg  string
	code int
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...), code: http.StatusBadRequest}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	// Two documents per request.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	template, err := s.readSource(r, "template")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	target, err := s.readSource(r, "target")
	if err != nil {
		writeRequestError(w, err)
		return
	}

	job := pipeline.NewJob(template, target, config.SplitList(r.FormValue("critical_chapters")))
	if err := s.checks.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Info("check queued", "job_id", job.ID, "template", template.Name(), "target", target.Name())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/check/%s/status", job.ID),
	})
}

// handleBatchCheck compares several targets against one template. Each
// target becomes its own job.
func (s *Server) handleBatchCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*formOverhead)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	template, err := s.readSource(r, "template")
	if err != nil {
		writeRequestError(w, err)
		return
	}

	files := r.MultipartForm.File["targets"]
	urls := r.MultipartForm.Value["target_url"]
	if len(files) == 0 && len(urls) == 0 {
		jsonError(w, "at least one target file or target_url is required", http.StatusBadRequest)
		return
	}
	critical := config.SplitList(r.FormValue("critical_chapters"))

	var results []map[string]any
	submit := func(name string, target pipeline.Source) {
		job := pipeline.NewJob(template, target, critical)
		if err := s.checks.Submit(job); err != nil {
			results = append(results, map[string]any{"target": name, "error": err.Error()})
			return
		}
		results = append(results, map[string]any{
			"target":   name,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/check/%s/status", job.ID),
		})
	}

	for _, fh := range files {
		src, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{"target": sanitizeFilename(fh.Filename), "error": err.Error()})
			continue
		}
		submit(src.Filename, src)
	}
	for _, raw := range urls {
		if err := validateURL(raw); err != nil {
			results = append(results, map[string]any{"target": raw, "error": err.Error()})
			continue
		}
		submit(raw, pipeline.Source{URL: raw})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	job := s.checks.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleCheckResult(w http.ResponseWriter, r *http.Request) {
	job := s.checks.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	out, ok := job.Outcome()
	if !ok {
		jsonError(w, fmt.Sprintf("job not finished (status %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// readSource reads one side of a comparison from the form: an uploaded file
// under side, or a URL under side_url with an optional side_page_id.
func (s *Server) readSource(r *http.Request, side string) (pipeline.Source, error) {
	if files := r.MultipartForm.File[side]; len(files) > 0 {
		return s.readUpload(files[0])
	}
	raw := strings.TrimSpace(r.FormValue(side + "_url"))
	if raw == "" {
		return pipeline.Source{}, badRequest("%s file or %s_url is required", side, side)
	}
	if err := validateURL(raw); err != nil {
		return pipeline.Source{}, badRequest("%s_url: %s", side, err)
	}
	return pipeline.Source{URL: raw, PageID: strings.TrimSpace(r.FormValue(side + "_page_id"))}, nil
}

func (s *Server) readUpload(fh *multipart.FileHeader) (pipeline.Source, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return pipeline.Source{}, badRequest("unsupported file type: %s", filepath.Ext(filename))
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Source{}, &requestError{msg: "failed to open file", code: http.StatusInternalServerError}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return pipeline.Source{}, &requestError{msg: "failed to read file", code: http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return pipeline.Source{}, &requestError{
			msg:  fmt.Sprintf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes),
			code: http.StatusRequestEntityTooLarge,
		}
	}
	return pipeline.Source{Filename: filename, Data: data}, nil
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

func writeRequestError(w http.ResponseWriter, err error) {
	var re *requestError
	if errors.As(err, &re) {
		jsonError(w, re.msg, re.code)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
