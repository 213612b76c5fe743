package repository

import (
	"context"
	"time"

	"equiplend/internal/domain"

	"gorm.io/gorm"
)

type BorrowViewFilter struct {
	RequesterID *int64
	EquipmentID *int64
	Statuses    []domain.BorrowStatus
}

// borrowViewRow names its request field: gorm ignores unexported anonymous
// embeds, which would leave every request column zero after Scan.
type borrowViewRow struct {
	Request borrowRequestModel `gorm:"embedded"`

	EquipmentName     string  `gorm:"column:equipment_name"`
	EquipmentCategory string  `gorm:"column:equipment_category"`
	EquipmentSerial   *string `gorm:"column:equipment_serial"`
	EquipmentImage    *string `gorm:"column:equipment_image"`
	RequesterName     string  `gorm:"column:requester_name"`
	RequesterEmail    string  `gorm:"column:requester_email"`
	ApproverName      *string `gorm:"column:approver_name"`
	ApproverEmail     *string `gorm:"column:approver_email"`
}

const borrowViewColumns = `borrow_requests.*,
	e.name AS equipment_name, e.category AS equipment_category,
	e.serial_number AS equipment_serial, e.image_url AS equipment_image,
	u.name AS requester_name, u.email AS requester_email,
	a.name AS approver_name, a.email AS approver_email`

// viewQuery joins equipment (deleted items included, history keeps them)
// and the requester and approver users.
func viewQuery(db *gorm.DB, f BorrowViewFilter) *gorm.DB {
	q := db.Model(&borrowRequestModel{}).
		Joins("JOIN equipment e ON e.id = borrow_requests.equipment_id").
		Joins("JOIN users u ON u.id = borrow_requests.requester_id").
		Joins("LEFT JOIN users a ON a.id = borrow_requests.approved_by")
	if f.RequesterID != nil {
		q = q.Where("borrow_requests.requester_id = ?", *f.RequesterID)
	}
	if f.EquipmentID != nil {
		q = q.Where("borrow_requests.equipment_id = ?", *f.EquipmentID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("borrow_requests.status IN ?", statusStrings(f.Statuses))
	}
	return q
}

// ListViews returns joined requests newest first, ties broken by id.
func (r *BorrowRepository) ListViews(ctx context.Context, f BorrowViewFilter, limit, offset int) ([]domain.BorrowView, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := viewQuery(db, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []borrowViewRow
	err := viewQuery(db, f).
		Select(borrowViewColumns).
		Order("borrow_requests.created_at DESC, borrow_requests.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.BorrowView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func (r *BorrowRepository) GetView(ctx context.Context, id int64) (*domain.BorrowView, error) {
	var rows []borrowViewRow
	err := viewQuery(r.db.WithContext(ctx), BorrowViewFilter{}).
		Select(borrowViewColumns).
		Where("borrow_requests.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrRequestNotFound
	}
	v := rows[0].toDomain()
	return &v, nil
}

func (row borrowViewRow) toDomain() domain.BorrowView {
	v := domain.BorrowView{
		BorrowRequest: *toDomainBorrowRequest(row.Request),
		Equipment: domain.EquipmentRef{
			ID:           row.Request.EquipmentID,
			Name:         row.EquipmentName,
			Category:     row.EquipmentCategory,
			SerialNumber: deref(row.EquipmentSerial),
			ImageURL:     deref(row.EquipmentImage),
		},
		Requester: domain.PartyRef{
			ID:    row.Request.RequesterID,
			Name:  row.RequesterName,
			Email: row.RequesterEmail,
		},
	}
	if row.Request.ApprovedBy != nil {
		v.Approver = &domain.PartyRef{
			ID:    *row.Request.ApprovedBy,
			Name:  deref(row.ApproverName),
			Email: deref(row.ApproverEmail),
		}
	}
	return v
}

// EquipmentCount is one row of the most-requested ranking.
type EquipmentCount struct {
	EquipmentID int64
	Name        string
	Category    string
	Count       int64
}

func scoped(q *gorm.DB, requesterID *int64) *gorm.DB {
	if requesterID != nil {
		return q.Where("borrow_requests.requester_id = ?", *requesterID)
	}
	return q
}

// CountByStatus returns stored request counts per status. A nil requesterID
// counts every request.
func (r *BorrowRepository) CountByStatus(ctx context.Context, requesterID *int64) (map[domain.BorrowStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	q := r.db.WithContext(ctx).Model(&borrowRequestModel{}).
		Select("borrow_requests.status AS status, COUNT(*) AS count").
		Group("borrow_requests.status")
	if err := scoped(q, requesterID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.BorrowStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.BorrowStatus(row.Status)] = row.Count
	}
	return out, nil
}

// CountOverdue counts borrowed requests whose end date is before now.
func (r *BorrowRepository) CountOverdue(ctx context.Context, requesterID *int64, now time.Time) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&borrowRequestModel{}).
		Where("borrow_requests.status IN ?", statusStrings([]domain.BorrowStatus{domain.BorrowApproved, domain.BorrowActive})).
		Where("borrow_requests.end_date < ?", now.UTC())
	err := scoped(q, requesterID).Count(&n).Error
	return n, err
}

// TopEquipment ranks equipment by number of requests, ties by id.
func (r *BorrowRepository) TopEquipment(ctx context.Context, requesterID *int64, limit int) ([]EquipmentCount, error) {
	var rows []EquipmentCount
	q := r.db.WithContext(ctx).Model(&borrowRequestModel{}).
		Select("e.id AS equipment_id, e.name AS name, e.category AS category, COUNT(borrow_requests.id) AS count").
		Joins("JOIN equipment e ON e.id = borrow_requests.equipment_id").
		Group("e.id, e.name, e.category").
		Order("count DESC, e.id ASC").
		Limit(limit)
	if err := scoped(q, requesterID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreatedSince returns creation times of requests created at or after since.
func (r *BorrowRepository) CreatedSince(ctx context.Context, requesterID *int64, since time.Time) ([]time.Time, error) {
	var out []time.Time
	q := r.db.WithContext(ctx).Model(&borrowRequestModel{}).
		Where("borrow_requests.created_at >= ?", since.UTC())
	if err := scoped(q, requesterID).Pluck("borrow_requests.created_at", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
