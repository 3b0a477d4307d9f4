package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/introbird/internal/generation"
	"github.com/jonathan/introbird/internal/llm"
	"github.com/jonathan/introbird/internal/server/middleware"
	"github.com/jonathan/introbird/internal/types"
)

// maxJSONBodyBytes bounds JSON request bodies.
const maxJSONBodyBytes = 1 << 20

// ModesResponse is the shared mode table plus the selectable tones and models.
type ModesResponse struct {
	Modes        []types.ModeSpec `json:"modes"`
	Tones        []string         `json:"tones"`
	Models       []llm.ModelInfo  `json:"models"`
	DefaultModel string           `json:"defaultModel"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleModes returns the mode table so clients and server agree on ids and limits.
func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, ModesResponse{
		Modes:        types.Modes(),
		Tones:        append([]string(nil), types.ToneOptions...),
		Models:       s.models.Models,
		DefaultModel: s.models.DefaultModel,
	})
}

// handleGenerate produces suggestions. The requester is always the token identity.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeGenerationRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	result, err := s.service.GenerateSuggestions(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateStream is handleGenerate with retry progress streamed as Server-Sent Events.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeGenerationRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := s.service.GenerateSuggestionsStream(r.Context(), req, func(e generation.Event) {
		name := EventAttempt
		if e.Kind == generation.EventRetry {
			name = EventRetry
		}
		if writeErr := sse.WriteEvent(name, e); writeErr != nil {
			s.logger.Debug("Client stopped reading progress events", zap.Error(writeErr))
		}
	})
	if err != nil {
		status := HTTPStatus(err)
		resp := newErrorResponse(err, status)
		resp.RequestID = RequestID(r.Context())
		sse.WriteError(resp)
		return
	}
	sse.WriteComplete(result)
}

func (s *Server) decodeGenerationRequest(w http.ResponseWriter, r *http.Request) (types.GenerationRequest, error) {
	var req types.GenerationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	// A requesterId in the body is never trusted.
	req.RequesterID, _ = middleware.UserID(r.Context())
	return req, nil
}

// handleImproveDraft polishes a draft.
func (s *Server) handleImproveDraft(w http.ResponseWriter, r *http.Request) {
	var req types.ImproveDraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	out, err := s.service.ImproveDraft(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleRefineDraft rewrites a draft according to an instruction.
func (s *Server) handleRefineDraft(w http.ResponseWriter, r *http.Request) {
	var req types.RefineDraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	out, err := s.service.RefineDraft(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleSummarizeEmail summarizes an email body.
func (s *Server) handleSummarizeEmail(w http.ResponseWriter, r *http.Request) {
	var req types.SummarizeEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	out, err := s.service.SummarizeEmail(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleGetProfile returns the caller's profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	p, err := s.service.GetProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleUpdateProfile applies a partial update to the caller's profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	var update types.Profile
	if err := decodeJSON(w, r, &update); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	p, err := s.service.UpdateProfile(r.Context(), userID, &update)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleUploadResume accepts a PDF either as the raw body or as the "file" field of a
// multipart form, summarizes it and stores the summary on the caller's profile.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	pdf, err := readResume(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	out, err := s.service.SummarizeResume(r.Context(), userID, pdf, r.URL.Query().Get("model"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func readResume(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	// Headroom over the limit lets the service report the size error.
	r.Body = http.MaxBytesReader(w, r.Body, generation.MaxResumeBytes+1024)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyError(err)
		}
		return data, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, &types.ValidationError{Field: "file", Message: "no resume file provided"}
		}
		return nil, bodyError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, bodyError(err)
	}
	return data, nil
}

// decodeJSON reads a bounded JSON body into dst. Failures are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &types.ValidationError{Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
	}
	if errors.Is(err, io.EOF) {
		return &types.ValidationError{Message: "request body is empty"}
	}
	return &types.ValidationError{Message: "invalid request body: " + err.Error()}
}
