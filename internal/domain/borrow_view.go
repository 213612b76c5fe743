package domain

import "time"

// PublicRequesterLabel replaces requester names on the public feed.
const PublicRequesterLabel = "Community member"

type PartyRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EquipmentRef struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	SerialNumber string `json:"serialNumber"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// BorrowView is a borrow request joined with its equipment and people.
type BorrowView struct {
	BorrowRequest
	DisplayStatus BorrowStatus `json:"displayStatus"`
	Overdue       bool         `json:"overdue"`
	Equipment     EquipmentRef `json:"equipment"`
	Requester     PartyRef     `json:"requester"`
	Approver      *PartyRef    `json:"approver,omitempty"`
}

// Decorate fills the derived fields relative to now.
func (v *BorrowView) Decorate(now time.Time) {
	v.Overdue = v.BorrowRequest.Overdue(now)
	v.DisplayStatus = v.BorrowRequest.DisplayStatus(now)
}

// Redacted returns a copy safe for anonymous readers.
func (v BorrowView) Redacted() BorrowView {
	out := v
	out.RequesterID = 0
	out.Requester = PartyRef{Name: PublicRequesterLabel}
	out.Approver = nil
	out.ApprovedBy = nil
	out.ReturnConfirmedBy = nil
	out.Notes = ""
	out.RejectionReason = ""
	out.Equipment.SerialNumber = ""
	return out
}
