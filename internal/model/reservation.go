package model

import "time"

// Room is a bookable room as published by the booking backend.
type Room struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Reservation is the payload submitted to the booking backend once the
// wizard has collected every step.
type Reservation struct {
	IdempotencyKey string         `json:"idempotencyKey"`
	RoomID         string         `json:"roomId,omitempty"`
	Fields         map[string]any `json:"fields"`
}

// Confirmation is the backend's acknowledgement of a reservation.
type Confirmation struct {
	ID         string    `json:"confirmationId"`
	ReceivedAt time.Time `json:"receivedAt"`
}
