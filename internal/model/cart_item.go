package model

import "time"

// CartItem is one room selection held in the reservation cart.
// Duplicate room ids are allowed.
type CartItem struct {
	RoomID   string    `json:"roomId"`
	CheckIn  Date      `json:"checkIn"`
	CheckOut Date      `json:"checkOut"`
	Guests   int       `json:"guests"`
	AddedAt  time.Time `json:"addedAt"`
}

// Nights is the length of the stay in whole days.
func (c CartItem) Nights() int {
	return c.CheckIn.DaysUntil(c.CheckOut)
}
