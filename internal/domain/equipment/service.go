package equipment

import (
	"context"
	"log"
	"strings"

	"equiplend/internal/access"
	"equiplend/internal/domain"
	"equiplend/internal/pkg/apperr"
	"equiplend/internal/repository"
)

// Repository defines equipment data access
type Repository interface {
	List(ctx context.Context, f repository.EquipmentFilter, limit, offset int) ([]domain.Equipment, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
	Create(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error)
	Update(ctx context.Context, id int64, p domain.EquipmentPatch) (*domain.Equipment, error)
	Delete(ctx context.Context, id int64) error
}

// StatsInvalidator drops cached statistics after inventory changes.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context) error
}

// Service handles the equipment catalog
type Service struct {
	repo  Repository
	stats StatsInvalidator
}

func NewService(repo Repository, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

func (s *Service) List(ctx context.Context, f repository.EquipmentFilter, limit, offset int) ([]domain.Equipment, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.Validation("unknown equipment status %q", f.Status)
	}
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an item with every unit available.
func (s *Service) Create(ctx context.Context, actor domain.Actor, e *domain.Equipment) (*domain.Equipment, error) {
	if !access.CanPerform(actor.Role, access.OpManageEquipment) {
		return nil, domain.ErrForbidden
	}
	e.Name = strings.TrimSpace(e.Name)
	e.Category = strings.TrimSpace(e.Category)
	e.SerialNumber = strings.TrimSpace(e.SerialNumber)
	if e.Name == "" || e.Category == "" {
		return nil, apperr.Validation("name and category are required")
	}
	if e.TotalQuantity < 0 {
		return nil, apperr.Validation("totalQuantity must be >= 0")
	}
	if e.Status != "" && !e.Status.Valid() {
		return nil, apperr.Validation("unknown equipment status %q", e.Status)
	}
	if actor.ID != 0 {
		id := actor.ID
		e.CreatedBy = &id
	}

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	log.Printf("equipment_created equipment_id=%d actor_id=%d total=%d", created.ID, actor.ID, created.TotalQuantity)
	s.invalidate(ctx)
	return created, nil
}

// Update applies an admin edit. A total change shifts available by the same amount.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, p domain.EquipmentPatch) (*domain.Equipment, error) {
	if !access.CanPerform(actor.Role, access.OpManageEquipment) {
		return nil, domain.ErrForbidden
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, apperr.Validation("name cannot be empty")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return nil, apperr.Validation("category cannot be empty")
	}
	if p.TotalQuantity != nil && *p.TotalQuantity < 0 {
		return nil, apperr.Validation("totalQuantity must be >= 0")
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, apperr.Validation("unknown equipment status %q", *p.Status)
	}

	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	log.Printf("equipment_updated equipment_id=%d actor_id=%d", id, actor.ID)
	s.invalidate(ctx)
	return updated, nil
}

// Delete soft-deletes an item no outstanding request references.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if !access.CanPerform(actor.Role, access.OpManageEquipment) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("equipment_deleted equipment_id=%d actor_id=%d", id, actor.ID)
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.stats == nil {
		return
	}
	if err := s.stats.InvalidateStats(ctx); err != nil {
		log.Printf("stats_invalidate_failed error=%q", err.Error())
	}
}
