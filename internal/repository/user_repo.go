package repository

import (
	"context"
	"strings"

	"equiplend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate inserts u unless a row with the same identity id exists and
// returns the stored row. Safe to race: the insert is an upsert that does
// nothing on conflict. created is true only for the call that inserted.
func (r *UserRepository) GetOrCreate(ctx context.Context, u *domain.User) (*domain.User, bool, error) {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "identity_id"}}, DoNothing: true}).
		Create(&m)
	if tx.Error != nil && !isUniqueConstraintError(tx.Error) {
		return nil, false, tx.Error
	}
	created := tx.Error == nil && tx.RowsAffected == 1

	stored, err := r.GetByIdentityID(ctx, u.IdentityID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *UserRepository) GetByIdentityID(ctx context.Context, identityID string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).First(&m).Error
	if isNotFound(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if isNotFound(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

// SyncProfile refreshes the email and name the identity provider reports.
func (r *UserRepository) SyncProfile(ctx context.Context, id int64, email, name string) error {
	updates := map[string]any{"email": normalizeEmail(email)}
	if strings.TrimSpace(name) != "" {
		updates["name"] = strings.TrimSpace(name)
	}
	return r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(updates).Error
}

type UserListFilter struct {
	Role  domain.UserRole
	Query string
}

func (r *UserRepository) List(ctx context.Context, filter UserListFilter, limit, offset int) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&userModel{})
	if filter.Role != "" {
		q = q.Where("role = ?", string(filter.Role))
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []userModel
	if err := q.Order("id ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainUser(m))
	}
	return out, total, nil
}

// UpdateRole sets the role of user id. Demoting an ADMIN is refused when no
// other ADMIN would remain. The ADMIN rows are locked first, so concurrent
// demotions queue on the same set and the later one sees the earlier result.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.UserRole) (*domain.User, error) {
	var out *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admins []int64
		if role != domain.RoleAdmin {
			err := tx.Model(&userModel{}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("role = ?", string(domain.RoleAdmin)).
				Order("id ASC").
				Pluck("id", &admins).Error
			if err != nil {
				return err
			}
		}

		var current userModel
		if err := tx.First(&current, id).Error; err != nil {
			if isNotFound(err) {
				return domain.ErrUserNotFound
			}
			return err
		}
		if current.Role == string(domain.RoleAdmin) && role != domain.RoleAdmin && len(admins) < 2 {
			return domain.ErrLastAdmin
		}

		if err := tx.Model(&userModel{}).Where("id = ?", id).Update("role", string(role)).Error; err != nil {
			return err
		}

		var updated userModel
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}
		out = toDomainUser(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
