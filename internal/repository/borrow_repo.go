package repository

import (
	"context"
	"time"

	"equiplend/internal/domain"

	"gorm.io/gorm"
)

// BorrowRepository owns borrow requests and the inventory ledger moves that
// go with them. Every transition is a conditional write inside one
// transaction, so two concurrent callers can never both succeed.
type BorrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) *BorrowRepository {
	return &BorrowRepository{db: db}
}

// Create stores a PENDING request after checking that the equipment exists,
// is not under maintenance or retired, and has enough units available.
// Nothing is reserved until approval.
func (r *BorrowRepository) Create(ctx context.Context, req *domain.BorrowRequest) (*domain.BorrowRequest, error) {
	var out *domain.BorrowRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&equipmentModel{}).
			Where("id = ?", req.EquipmentID).
			Where("status NOT IN ?", manualStatuses()).
			Where("available_quantity >= ?", req.Quantity).
			Update("updated_at", tx.NowFunc())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return explainEquipmentMiss(tx, req.EquipmentID)
		}

		req.Status = domain.BorrowPending
		m := toBorrowRequestModel(req)
		if err := tx.Omit("Equipment", "Requester").Create(&m).Error; err != nil {
			return err
		}
		out = toDomainBorrowRequest(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowRepository) GetByID(ctx context.Context, id int64) (*domain.BorrowRequest, error) {
	return getBorrowRequest(r.db.WithContext(ctx), id)
}

// Approve moves a PENDING request to APPROVED and takes its quantity out of
// the ledger. The equipment returned reflects the post-approval state.
func (r *BorrowRepository) Approve(ctx context.Context, id, approverID int64, at time.Time) (*domain.BorrowRequest, *domain.Equipment, error) {
	var (
		outReq *domain.BorrowRequest
		outEq  *domain.Equipment
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := getBorrowRequest(tx, id)
		if err != nil {
			return err
		}
		if req.Status != domain.BorrowPending {
			return domain.ErrWrongStatus
		}

		res := tx.Model(&equipmentModel{}).
			Where("id = ?", req.EquipmentID).
			Where("status NOT IN ?", manualStatuses()).
			Where("available_quantity >= ?", req.Quantity).
			Update("available_quantity", gorm.Expr("available_quantity - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return explainEquipmentMiss(tx, req.EquipmentID)
		}

		res = tx.Model(&borrowRequestModel{}).
			Where("id = ? AND status = ?", id, string(domain.BorrowPending)).
			Updates(map[string]any{
				"status":      string(domain.BorrowApproved),
				"approved_by": approverID,
				"approved_at": at.UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrWrongStatus
		}

		eq, err := getEquipment(tx, req.EquipmentID)
		if err != nil {
			return err
		}
		if err := syncEquipmentStatus(tx, eq, domain.StatusAfterApprove(eq.Status, eq.AvailableQuantity)); err != nil {
			return err
		}

		outReq, err = getBorrowRequest(tx, id)
		outEq = eq
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return outReq, outEq, nil
}

// Reject moves a PENDING request to REJECTED. The ledger is untouched.
func (r *BorrowRepository) Reject(ctx context.Context, id, actorID int64, reason string, at time.Time) (*domain.BorrowRequest, error) {
	return r.transition(ctx, id, []domain.BorrowStatus{domain.BorrowPending}, map[string]any{
		"status":           string(domain.BorrowRejected),
		"approved_by":      actorID,
		"approved_at":      at.UTC(),
		"rejection_reason": nullable(reason),
	})
}

// RequestReturn moves a borrowed request to PENDING_RETURN. The ledger is
// untouched until an admin confirms.
func (r *BorrowRepository) RequestReturn(ctx context.Context, id int64, at time.Time) (*domain.BorrowRequest, error) {
	return r.transition(ctx, id, []domain.BorrowStatus{domain.BorrowApproved, domain.BorrowActive}, map[string]any{
		"status":              string(domain.BorrowPendingReturn),
		"return_requested_at": at.UTC(),
	})
}

// ConfirmReturn moves a PENDING_RETURN request to RETURNED and puts its
// quantity back. A return that would push available above total is refused.
func (r *BorrowRepository) ConfirmReturn(ctx context.Context, id, actorID int64, at time.Time) (*domain.BorrowRequest, *domain.Equipment, error) {
	var (
		outReq *domain.BorrowRequest
		outEq  *domain.Equipment
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := getBorrowRequest(tx, id)
		if err != nil {
			return err
		}
		if req.Status != domain.BorrowPendingReturn {
			return domain.ErrWrongStatus
		}

		res := tx.Model(&borrowRequestModel{}).
			Where("id = ? AND status = ?", id, string(domain.BorrowPendingReturn)).
			Updates(map[string]any{
				"status":              string(domain.BorrowReturned),
				"actual_return_date":  at.UTC(),
				"return_confirmed_by": actorID,
				"return_confirmed_at": at.UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrWrongStatus
		}

		// returns land even on soft-deleted items
		res = tx.Unscoped().Model(&equipmentModel{}).
			Where("id = ?", req.EquipmentID).
			Where("available_quantity + ? <= total_quantity", req.Quantity).
			Updates(map[string]any{
				"available_quantity": gorm.Expr("available_quantity + ?", req.Quantity),
				"updated_at":         tx.NowFunc(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrLedgerInconsistent
		}

		var m equipmentModel
		if err := tx.Unscoped().First(&m, req.EquipmentID).Error; err != nil {
			return err
		}
		eq := toDomainEquipment(m)
		if err := syncEquipmentStatus(tx.Unscoped(), eq, domain.StatusAfterReturn(eq.Status, eq.AvailableQuantity, eq.TotalQuantity)); err != nil {
			return err
		}

		outReq, err = getBorrowRequest(tx, id)
		outEq = eq
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return outReq, outEq, nil
}

func (r *BorrowRepository) transition(ctx context.Context, id int64, from []domain.BorrowStatus, updates map[string]any) (*domain.BorrowRequest, error) {
	var out *domain.BorrowRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&borrowRequestModel{}).
			Where("id = ? AND status IN ?", id, statusStrings(from)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := getBorrowRequest(tx, id); err != nil {
				return err
			}
			return domain.ErrWrongStatus
		}
		var err error
		out, err = getBorrowRequest(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getBorrowRequest(db *gorm.DB, id int64) (*domain.BorrowRequest, error) {
	var m borrowRequestModel
	err := db.First(&m, id).Error
	if isNotFound(err) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainBorrowRequest(m), nil
}

// explainEquipmentMiss turns a conditional equipment write that matched no
// rows into the precondition that failed.
func explainEquipmentMiss(tx *gorm.DB, equipmentID int64) error {
	eq, err := getEquipment(tx, equipmentID)
	if err != nil {
		return err
	}
	if eq.Status.Manual() {
		return domain.ErrEquipmentUnavailable
	}
	return domain.ErrInsufficientQuantity
}

func syncEquipmentStatus(tx *gorm.DB, eq *domain.Equipment, status domain.EquipmentStatus) error {
	if eq.Status == status {
		return nil
	}
	if err := tx.Model(&equipmentModel{}).Where("id = ?", eq.ID).Update("status", string(status)).Error; err != nil {
		return err
	}
	eq.Status = status
	return nil
}
