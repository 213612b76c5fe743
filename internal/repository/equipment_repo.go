package repository

import (
	"context"
	"strings"

	"equiplend/internal/domain"

	"gorm.io/gorm"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

type EquipmentFilter struct {
	Category      string
	Status        domain.EquipmentStatus
	Query         string
	AvailableOnly bool
}

func (r *EquipmentRepository) List(ctx context.Context, f EquipmentFilter, limit, offset int) ([]domain.Equipment, int64, error) {
	q := r.db.WithContext(ctx).Model(&equipmentModel{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ? OR LOWER(COALESCE(serial_number, '')) LIKE ?", like, like, like)
	}
	if f.AvailableOnly {
		q = q.Where("available_quantity > 0 AND status NOT IN ?", manualStatuses())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []equipmentModel
	if err := q.Order("name ASC, id ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Equipment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainEquipment(m))
	}
	return out, total, nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	return getEquipment(r.db.WithContext(ctx), id)
}

// Create stores e with every unit available.
func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error) {
	e.AvailableQuantity = e.TotalQuantity
	if e.Status == "" || !e.Status.Manual() {
		e.Status = domain.StatusAfterApprove(domain.EquipmentAvailable, e.AvailableQuantity)
	}
	m := toEquipmentModel(e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, domain.ErrDuplicateSerial
		}
		return nil, err
	}
	return toDomainEquipment(m), nil
}

// Update applies p. A total change shifts available by the same delta and is
// refused when it would leave available below zero.
func (r *EquipmentRepository) Update(ctx context.Context, id int64, p domain.EquipmentPatch) (*domain.Equipment, error) {
	var out *domain.Equipment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getEquipment(tx, id); err != nil {
			return err
		}

		updates := map[string]any{}
		if p.Name != nil {
			updates["name"] = strings.TrimSpace(*p.Name)
		}
		if p.Category != nil {
			updates["category"] = strings.TrimSpace(*p.Category)
		}
		if p.Description != nil {
			updates["description"] = nullable(*p.Description)
		}
		if p.ImageURL != nil {
			updates["image_url"] = nullable(*p.ImageURL)
		}
		if p.Location != nil {
			updates["location"] = nullable(*p.Location)
		}
		if p.SerialNumber != nil {
			updates["serial_number"] = nullable(strings.TrimSpace(*p.SerialNumber))
		}
		if p.Condition != nil {
			updates["condition"] = nullable(*p.Condition)
		}

		q := tx.Model(&equipmentModel{}).Where("id = ?", id)
		if p.TotalQuantity != nil {
			n := *p.TotalQuantity
			updates["total_quantity"] = n
			updates["available_quantity"] = gorm.Expr("available_quantity + (? - total_quantity)", n)
			q = q.Where("available_quantity + (? - total_quantity) >= 0", n)
		}

		if len(updates) > 0 {
			res := q.Updates(updates)
			if res.Error != nil {
				if isUniqueConstraintError(res.Error) {
					return domain.ErrDuplicateSerial
				}
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrQuantityBelowLent
			}
		}

		current, err := getEquipment(tx, id)
		if err != nil {
			return err
		}

		status := current.Status
		if p.Status != nil {
			status = *p.Status
		}
		// an admin clearing MAINTENANCE or RETIRED hands the status back to the ledger
		if !status.Manual() {
			status = domain.StatusAfterApprove(status, current.AvailableQuantity)
		}
		if status != current.Status {
			if err := tx.Model(&equipmentModel{}).Where("id = ?", id).Update("status", string(status)).Error; err != nil {
				return err
			}
			current.Status = status
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete soft-deletes the item unless a request still references it in a
// blocking status. The check and the delete are one statement.
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	res := db.
		Where("id = ?", id).
		Where("NOT EXISTS (SELECT 1 FROM borrow_requests br WHERE br.equipment_id = equipment.id AND br.status IN ?)", statusStrings(domain.BlockingStatuses)).
		Delete(&equipmentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := getEquipment(db, id); err != nil {
		return err
	}
	return domain.ErrEquipmentInUse
}

// CountByStatus returns the number of live items per equipment status.
func (r *EquipmentRepository) CountByStatus(ctx context.Context) (map[domain.EquipmentStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&equipmentModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.EquipmentStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.EquipmentStatus(row.Status)] = row.Count
	}
	return out, nil
}

func getEquipment(db *gorm.DB, id int64) (*domain.Equipment, error) {
	var m equipmentModel
	err := db.First(&m, id).Error
	if isNotFound(err) {
		return nil, domain.ErrEquipmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainEquipment(m), nil
}

func manualStatuses() []string {
	return []string{string(domain.EquipmentMaintenance), string(domain.EquipmentRetired)}
}
