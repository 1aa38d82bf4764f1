package model

import "time"

// Customer is the minimal projection of a member the core touches: seat
// allocation flips Assigned as a side effect.
type Customer struct {
	ID        string
	OrgID     string
	Name      string
	Email     string
	Assigned  bool
	CreatedAt time.Time
}
