package domain

import "time"

type BorrowStatus string

const (
	BorrowPending       BorrowStatus = "PENDING"
	BorrowApproved      BorrowStatus = "APPROVED"
	BorrowActive        BorrowStatus = "ACTIVE"
	BorrowPendingReturn BorrowStatus = "PENDING_RETURN"
	BorrowReturned      BorrowStatus = "RETURNED"
	BorrowRejected      BorrowStatus = "REJECTED"

	// BorrowOverdue is only ever computed for display, never stored.
	BorrowOverdue BorrowStatus = "OVERDUE"
)

func (s BorrowStatus) Valid() bool {
	switch s {
	case BorrowPending, BorrowApproved, BorrowActive, BorrowPendingReturn, BorrowReturned, BorrowRejected:
		return true
	}
	return false
}

// Outstanding statuses hold inventory out of the ledger.
var OutstandingStatuses = []BorrowStatus{BorrowApproved, BorrowActive, BorrowPendingReturn}

// BlockingStatuses prevent equipment deletion.
var BlockingStatuses = []BorrowStatus{BorrowPending, BorrowApproved, BorrowActive, BorrowPendingReturn}

// PublicStatuses are the statuses shown on the public feed.
var PublicStatuses = []BorrowStatus{BorrowApproved, BorrowActive, BorrowReturned}

type BorrowRequest struct {
	ID                int64        `json:"id"`
	EquipmentID       int64        `json:"equipmentId"`
	RequesterID       int64        `json:"requesterId"`
	Quantity          int          `json:"quantity"`
	Purpose           string       `json:"purpose,omitempty"`
	StartDate         time.Time    `json:"startDate"`
	EndDate           time.Time    `json:"endDate"`
	Notes             string       `json:"notes,omitempty"`
	Status            BorrowStatus `json:"status"`
	ApprovedBy        *int64       `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time   `json:"approvedAt,omitempty"`
	RejectionReason   string       `json:"rejectionReason,omitempty"`
	ReturnRequestedAt *time.Time   `json:"returnRequestedAt,omitempty"`
	ActualReturnDate  *time.Time   `json:"actualReturnDate,omitempty"`
	ReturnConfirmedBy *int64       `json:"returnConfirmedBy,omitempty"`
	ReturnConfirmedAt *time.Time   `json:"returnConfirmedAt,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Borrowed reports whether the request currently has equipment out.
func (b *BorrowRequest) Borrowed() bool {
	return b.Status == BorrowApproved || b.Status == BorrowActive
}

// Overdue is true for a borrowed request past its end date.
func (b *BorrowRequest) Overdue(now time.Time) bool {
	return b.Borrowed() && now.After(b.EndDate)
}

// DisplayStatus folds the derived OVERDUE state into the stored one.
func (b *BorrowRequest) DisplayStatus(now time.Time) BorrowStatus {
	if b.Overdue(now) {
		return BorrowOverdue
	}
	return b.Status
}
