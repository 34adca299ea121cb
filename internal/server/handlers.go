package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/idilsaglam/hotelres/internal/model"
)

const maxBookingBody = 1 << 20

type selectRoomResponse struct {
	Success bool        `json:"success"`
	Room    *model.Room `json:"room,omitempty"`
}

// booking remembers what a key was first used for.
type booking struct {
	conf   model.Confirmation
	digest string
}

// payloadDigest hashes the room and fields; encoding/json sorts map keys.
func payloadDigest(req model.Reservation) string {
	b, _ := json.Marshal(struct {
		RoomID string         `json:"roomId"`
		Fields map[string]any `json:"fields"`
	}{req.RoomID, req.Fields})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

type bookingResponse struct {
	Success        bool   `json:"success"`
	ConfirmationID string `json:"confirmationId,omitempty"`
	ReceivedAt     string `json:"receivedAt,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"rooms": s.rooms})
}

func (s *Server) selectRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "roomId")
	room, ok := s.byID[id]
	if !ok {
		s.logger.Info("room not found", "room_id", id)
		respondJSON(w, http.StatusOK, selectRoomResponse{Success: false})
		return
	}
	respondJSON(w, http.StatusOK, selectRoomResponse{Success: true, Room: &room})
}

// createBooking confirms a reservation. The same idempotency key always
// gets the same confirmation.
func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var req model.Reservation
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBookingBody))
	if err := dec.Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, bookingResponse{Error: "invalid JSON body"})
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		key = strings.TrimSpace(req.IdempotencyKey)
	}
	if key == "" {
		respondJSON(w, http.StatusUnprocessableEntity, bookingResponse{Error: "missing idempotency key"})
		return
	}
	if len(req.Fields) == 0 {
		respondJSON(w, http.StatusUnprocessableEntity, bookingResponse{Error: "missing reservation fields"})
		return
	}
	if req.RoomID != "" {
		if _, ok := s.byID[req.RoomID]; !ok {
			respondJSON(w, http.StatusOK, bookingResponse{Error: "unknown room " + req.RoomID})
			return
		}
	}

	digest := payloadDigest(req)
	s.mu.Lock()
	prev, seen := s.bookings[key]
	if !seen {
		prev = booking{
			conf:   model.Confirmation{ID: s.newID(), ReceivedAt: s.now().UTC()},
			digest: digest,
		}
		s.bookings[key] = prev
	}
	s.mu.Unlock()
	conf := prev.conf

	if seen && prev.digest != digest {
		s.logger.Warn("idempotency key reused with a different reservation", "confirmation_id", conf.ID)
		respondJSON(w, http.StatusUnprocessableEntity, bookingResponse{Error: "idempotency key already used for a different reservation"})
		return
	}
	if seen {
		s.logger.Info("duplicate booking submission", "confirmation_id", conf.ID)
	} else {
		s.logger.Info("booking confirmed", "confirmation_id", conf.ID, "room_id", req.RoomID)
	}
	respondJSON(w, http.StatusOK, bookingResponse{
		Success:        true,
		ConfirmationID: conf.ID,
		ReceivedAt:     conf.ReceivedAt.Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
