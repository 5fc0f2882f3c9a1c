package models

import "time"

// Deal status values. A deal moves from lead to paid (or lost) over time.
const (
	DealStatusLead        = "lead"
	DealStatusNegotiating = "negotiating"
	DealStatusSigned      = "signed"
	DealStatusDelivered   = "delivered"
	DealStatusPaid        = "paid"
	DealStatusLost        = "lost"
)

// Deal represents a brand partnership tracked by a creator.
type Deal struct {
	ID           string     `json:"id" firestore:"-"`
	UserID       string     `json:"userId"`
	BrandName    string     `json:"brandName"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	Status       string     `json:"status"`
	Value        int64      `json:"value"` // cents
	Currency     string     `json:"currency"`
	Deliverables []string   `json:"deliverables,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// CreateDealRequest is the payload for creating a deal.
type CreateDealRequest struct {
	BrandName    string     `json:"brandName" binding:"required"`
	ContactEmail string     `json:"contactEmail"`
	Status       string     `json:"status"`
	Value        int64      `json:"value"`
	Currency     string     `json:"currency"`
	Deliverables []string   `json:"deliverables"`
	Notes        string     `json:"notes"`
	DueDate      *time.Time `json:"dueDate"`
}

// UpdateDealRequest is the payload for updating a deal. Pointer fields
// distinguish "not provided" from zero values.
type UpdateDealRequest struct {
	BrandName    *string    `json:"brandName"`
	ContactEmail *string    `json:"contactEmail"`
	Status       *string    `json:"status"`
	Value        *int64     `json:"value"`
	Currency     *string    `json:"currency"`
	Deliverables *[]string  `json:"deliverables"`
	Notes        *string    `json:"notes"`
	DueDate      *time.Time `json:"dueDate"`
}

// ValidDealStatus reports whether s is one of the known deal statuses.
func ValidDealStatus(s string) bool {
	switch s {
	case DealStatusLead, DealStatusNegotiating, DealStatusSigned, DealStatusDelivered, DealStatusPaid, DealStatusLost:
		return true
	}
	return false
}
