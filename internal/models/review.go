package models

import "time"

// Review is a user-authored rating and comment for a station. Reviews are
// created once and never mutated.
type Review struct {
	ID        string    `json:"id"`
	StationID string    `json:"stationId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
