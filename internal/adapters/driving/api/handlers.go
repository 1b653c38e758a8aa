package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

// uploadFormField is the multipart field holding the document.
const uploadFormField = "file"

// multipartMemory is how much of an upload is kept in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

type uploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"file_path"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type metadataResponse struct {
	Metadata string `json:"my_metadata"`
}

type configResponse struct {
	BackendName string      `json:"backend_name"`
	Models      []ModelInfo `json:"models"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	q := userQuery{UserID: r.URL.Query().Get("user_id")}
	if err := checkStruct(q); err != nil {
		s.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, formError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: missing form field %q", domain.ErrValidation, uploadFormField))
		return
	}
	defer file.Close()

	result, err := s.chat.UploadDocument(r.Context(), q.UserID, header.Filename, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:  "PDF processed and stored successfully",
		FilePath: result.Path,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	q := userQuery{UserID: r.URL.Query().Get("user_id")}
	if err := checkStruct(q); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req chatRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid JSON body: %w", domain.ErrValidation, err))
		return
	}
	req.Messages = strings.TrimSpace(req.Messages)
	if err := checkStruct(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	answer, err := s.chat.Ask(r.Context(), q.UserID, req.Messages)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.chat.IsModelReady() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metadataResponse{Metadata: "This is a metadata endpoint."})
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		BackendName: s.cfg.BackendName,
		Models:      s.cfg.Models,
	})
}

// formError classifies a multipart parse failure. Oversized bodies keep
// their *http.MaxBytesError so statusFor reports 413.
func formError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("upload exceeds %d bytes: %w", maxBytes.Limit, err)
	}
	return fmt.Errorf("%w: invalid multipart form: %w", domain.ErrValidation, err)
}

// writeError logs err and writes it as {"detail": ...}.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := s.log.With(
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Error("Request failed")
	} else {
		log.Debug("Request rejected")
	}
	writeJSON(w, status, errorResponse{Detail: detailFor(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
