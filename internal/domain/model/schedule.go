package model

import "time"

type SeatStatus string

const (
	SeatStatusConfirmed SeatStatus = "confirmed"
	SeatStatusCancelled SeatStatus = "cancelled"
	SeatStatusCheckedIn SeatStatus = "checked_in"
)

// SlotCustomer links a seat in a class slot to the transaction that paid for it.
type SlotCustomer struct {
	CustomerID    string
	TransactionID string
	Status        SeatStatus
}

// ClassSlot is one scheduled instance of a class/course product. Available
// never goes negative; seat reservation decrements it under an atomic
// capacity guard.
type ClassSlot struct {
	ID         string
	LocationID string
	At         time.Time
	Available  int
	Customers  []SlotCustomer
}

// HasCustomer reports whether the customer already holds a seat in the slot.
func (s *ClassSlot) HasCustomer(customerID string) bool {
	for _, c := range s.Customers {
		if c.CustomerID == customerID {
			return true
		}
	}
	return false
}

// Schedule holds all slots of one (org, product) pair across locations.
type Schedule struct {
	ID        string
	OrgID     string
	ProductID string
	Slots     []ClassSlot
	CreatedAt time.Time
}

// SlotAt returns the slot at the given location/time, or nil.
func (s *Schedule) SlotAt(locationID string, at time.Time) *ClassSlot {
	for i := range s.Slots {
		if s.Slots[i].LocationID == locationID && s.Slots[i].At.Equal(at) {
			return &s.Slots[i]
		}
	}
	return nil
}
