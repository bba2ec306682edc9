package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/mkaranin/docask/internal/answer"
	"github.com/mkaranin/docask/internal/ingest"
)

// Ingestor processes an upload batch.
type Ingestor interface {
	Process(ctx context.Context, files []ingest.UploadedFile) ingest.Result
}

// Answerer answers a question against the knowledge base.
type Answerer interface {
	Ask(ctx context.Context, question string) (answer.Response, error)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "невозможно разобрать форму: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		jsonError(w, "Нет файлов для загрузки", http.StatusBadRequest)
		return
	}

	files := make([]ingest.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		name := sanitizeFilename(fh.Filename)

		f, err := fh.Open()
		if err != nil {
			files = append(files, ingest.UploadedFile{Name: name})
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			files = append(files, ingest.UploadedFile{Name: name})
			continue
		}
		files = append(files, ingest.UploadedFile{Name: name, Data: data})
	}

	result := s.pipeline.Process(r.Context(), files)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	question := r.FormValue("question")
	if strings.TrimSpace(question) == "" {
		jsonError(w, "Вопрос не может быть пустым", http.StatusBadRequest)
		return
	}

	resp, err := s.answers.Ask(r.Context(), question)
	if err != nil {
		s.log.Error("query failed", "error", err)
		jsonError(w, "внутренняя ошибка сервиса", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
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
