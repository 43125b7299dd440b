package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sharepad/internal/completion"
	"sharepad/internal/executor"
	"sharepad/internal/room"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Execution ---

type executeRequest struct {
	Code     *string `json:"code"`
	Language string  `json:"language"`
}

// handleExecute runs submitted source through the process runner and returns
// the normalized output to the requester only. Runtime errors are output, not
// transport failures; a timeout is a distinct user-visible error; only spawn
// failures surface as 5xx.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Code == nil || *req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	language := req.Language
	if language == "" {
		language = room.DefaultLanguage
	}

	res, err := s.runner.Run(r.Context(), *req.Code, language)
	if err != nil {
		switch {
		case errors.Is(err, executor.ErrUnknownLanguage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, executor.ErrTimeout):
			writeJSON(w, http.StatusOK, map[string]string{"error": "Execution timed out"})
		default:
			log.Printf("execution error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to execute code")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"output": executor.Normalize(res)})
}

// --- Completion ---

type completeRequest struct {
	Code     *string `json:"code"`
	Cursor   *int    `json:"cursor"`
	Language string  `json:"language"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if s.completer == nil {
		writeError(w, http.StatusServiceUnavailable, "completion is not configured")
		return
	}

	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Code == nil || req.Cursor == nil || req.Language == "" {
		writeError(w, http.StatusBadRequest, "code, cursor, and language are required")
		return
	}

	suggestions, err := s.completer.Complete(r.Context(), completion.Request{
		Code:     *req.Code,
		Cursor:   *req.Cursor,
		Language: req.Language,
	})
	if err != nil {
		log.Printf("completion error: %v", err)
		writeError(w, http.StatusBadGateway, "failed to generate suggestions")
		return
	}

	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

// --- Room REST ---

type roomResponse struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// handleGetRoom reads a room's current state, falling back to persisted code
// for rooms that are not live in memory.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	if snap, ok := s.registry.Get(roomID); ok {
		writeJSON(w, http.StatusOK, roomResponse{
			RoomID:   roomID,
			Code:     snap.Code,
			Language: snap.Language,
			Count:    snap.Participants,
		})
		return
	}

	if s.store != nil {
		code, ok, err := s.store.LoadCode(r.Context(), roomID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if ok {
			writeJSON(w, http.StatusOK, roomResponse{
				RoomID:   roomID,
				Code:     code,
				Language: room.DefaultLanguage,
			})
			return
		}
	}

	writeError(w, http.StatusNotFound, "room not found")
}

type saveRoomRequest struct {
	Code *string `json:"code"`
}

func (s *Server) handleSaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req saveRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Code == nil {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	s.registry.SetCode(r.Context(), roomID, *req.Code)
	w.WriteHeader(http.StatusNoContent)
}
