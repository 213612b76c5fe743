package domain

import "equiplend/internal/pkg/apperr"

// Lifecycle and ledger failures. Each names the precondition that failed.
var (
	ErrUserNotFound      = apperr.New(apperr.ErrNotFound, "user not found")
	ErrEquipmentNotFound = apperr.New(apperr.ErrNotFound, "equipment not found")
	ErrRequestNotFound   = apperr.New(apperr.ErrNotFound, "borrow request not found")

	ErrWrongStatus          = apperr.New(apperr.ErrConflict, "borrow request is not in the required status")
	ErrInsufficientQuantity = apperr.New(apperr.ErrConflict, "insufficient available quantity")
	ErrEquipmentUnavailable = apperr.New(apperr.ErrConflict, "equipment is under maintenance or retired")
	ErrEquipmentInUse       = apperr.New(apperr.ErrConflict, "equipment has outstanding borrow requests")
	ErrQuantityBelowLent    = apperr.New(apperr.ErrConflict, "total quantity cannot drop below the quantity currently lent out")
	ErrDuplicateSerial      = apperr.New(apperr.ErrConflict, "serial number already exists")
	ErrLastAdmin            = apperr.New(apperr.ErrConflict, "cannot demote the last remaining admin")

	// ErrLedgerInconsistent means a return would push available above total.
	ErrLedgerInconsistent = apperr.New(apperr.ErrConflict, "inventory ledger would exceed total quantity")

	ErrForbidden = apperr.New(apperr.ErrAuthorization, "insufficient permissions")
	ErrNotOwner  = apperr.New(apperr.ErrAuthorization, "you do not own this borrow request")
)
