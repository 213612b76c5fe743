package borrow

import (
	"context"
	"log"
	"strings"
	"time"

	"equiplend/internal/access"
	"equiplend/internal/domain"
	"equiplend/internal/pkg/apperr"
	"equiplend/internal/repository"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Repository defines borrow request data access. Every mutating method is
// one transaction guarded by conditional updates.
type Repository interface {
	Create(ctx context.Context, req *domain.BorrowRequest) (*domain.BorrowRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.BorrowRequest, error)
	Approve(ctx context.Context, id, approverID int64, at time.Time) (*domain.BorrowRequest, *domain.Equipment, error)
	Reject(ctx context.Context, id, actorID int64, reason string, at time.Time) (*domain.BorrowRequest, error)
	RequestReturn(ctx context.Context, id int64, at time.Time) (*domain.BorrowRequest, error)
	ConfirmReturn(ctx context.Context, id, actorID int64, at time.Time) (*domain.BorrowRequest, *domain.Equipment, error)

	GetView(ctx context.Context, id int64) (*domain.BorrowView, error)
	ListViews(ctx context.Context, f repository.BorrowViewFilter, limit, offset int) ([]domain.BorrowView, int64, error)
}

// Publisher pushes request updates to the live public feed.
type Publisher interface {
	Publish(view domain.BorrowView)
}

// StatsInvalidator drops cached statistics after a transition.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context) error
}

// Service runs the borrow request lifecycle and its read views.
type Service struct {
	repo      Repository
	publisher Publisher
	stats     StatsInvalidator
	now       func() time.Time
}

func NewService(repo Repository, publisher Publisher, stats StatsInvalidator) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		stats:     stats,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput is a new request on behalf of the caller.
type CreateInput struct {
	EquipmentID int64
	Quantity    int
	Purpose     string
	StartDate   time.Time
	EndDate     time.Time
	Notes       string
}

// Create files a PENDING request. Availability is checked but nothing is
// reserved until approval.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.BorrowView, error) {
	if !access.CanPerform(actor.Role, access.OpCreateRequest) {
		return nil, domain.ErrForbidden
	}
	if in.EquipmentID <= 0 {
		return nil, apperr.Validation("equipmentId is required")
	}
	if in.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, apperr.Validation("startDate and endDate are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}

	req, err := s.repo.Create(ctx, &domain.BorrowRequest{
		EquipmentID: in.EquipmentID,
		RequesterID: actor.ID,
		Quantity:    in.Quantity,
		Purpose:     strings.TrimSpace(in.Purpose),
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Notes:       strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return nil, err
	}
	log.Printf("borrow_created request_id=%d equipment_id=%d requester_id=%d quantity=%d",
		req.ID, req.EquipmentID, req.RequesterID, req.Quantity)
	return s.afterTransition(ctx, req), nil
}

// Get returns one request to its owner or to staff.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.BorrowView, error) {
	v, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewRequest(actor.Role, actor.ID, v.RequesterID) {
		return nil, domain.ErrNotOwner
	}
	v.Decorate(s.now())
	return v, nil
}

// Approve hands the quantity out and moves the request to APPROVED.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, id int64) (*domain.BorrowView, error) {
	if !access.CanPerform(actor.Role, access.OpApproveRequest) {
		return nil, domain.ErrForbidden
	}
	req, eq, err := s.repo.Approve(ctx, id, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	log.Printf("borrow_approved request_id=%d actor_id=%d equipment_id=%d available=%d status=%s",
		req.ID, actor.ID, eq.ID, eq.AvailableQuantity, eq.Status)
	return s.afterTransition(ctx, req), nil
}

// Reject closes a PENDING request without touching inventory.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, id int64, reason string) (*domain.BorrowView, error) {
	if !access.CanPerform(actor.Role, access.OpRejectRequest) {
		return nil, domain.ErrForbidden
	}
	req, err := s.repo.Reject(ctx, id, actor.ID, strings.TrimSpace(reason), s.now())
	if err != nil {
		return nil, err
	}
	log.Printf("borrow_rejected request_id=%d actor_id=%d", req.ID, actor.ID)
	return s.afterTransition(ctx, req), nil
}

// Manage dispatches the combined approve/reject endpoint. Both actions are
// checked against the same access table as their dedicated routes.
func (s *Service) Manage(ctx context.Context, actor domain.Actor, id int64, action, reason string) (*domain.BorrowView, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionApprove:
		return s.Approve(ctx, actor, id)
	case ActionReject:
		return s.Reject(ctx, actor, id, reason)
	default:
		return nil, apperr.Validation("action must be %q or %q", ActionApprove, ActionReject)
	}
}

// RequestReturn marks a borrowed request as on its way back.
func (s *Service) RequestReturn(ctx context.Context, actor domain.Actor, id int64) (*domain.BorrowView, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRequestReturn(actor.Role, actor.ID, current.RequesterID) {
		return nil, domain.ErrNotOwner
	}
	req, err := s.repo.RequestReturn(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	log.Printf("borrow_return_requested request_id=%d actor_id=%d", req.ID, actor.ID)
	return s.afterTransition(ctx, req), nil
}

// ConfirmReturn puts the quantity back on the shelf.
func (s *Service) ConfirmReturn(ctx context.Context, actor domain.Actor, id int64) (*domain.BorrowView, error) {
	if !access.CanPerform(actor.Role, access.OpConfirmReturn) {
		return nil, domain.ErrForbidden
	}
	req, eq, err := s.repo.ConfirmReturn(ctx, id, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	log.Printf("borrow_returned request_id=%d actor_id=%d equipment_id=%d available=%d status=%s",
		req.ID, actor.ID, eq.ID, eq.AvailableQuantity, eq.Status)
	return s.afterTransition(ctx, req), nil
}

// ListFilter narrows the per-caller feed.
type ListFilter struct {
	MyOnly bool
	Status domain.BorrowStatus
}

// ListMine returns the caller's requests. Admins see everyone's unless they
// ask for their own.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor, f ListFilter, limit, offset int) ([]domain.BorrowView, int64, error) {
	vf, err := statusFilter(f.Status)
	if err != nil {
		return nil, 0, err
	}
	if f.MyOnly || !access.CanPerform(actor.Role, access.OpViewAllRequests) {
		id := actor.ID
		vf.RequesterID = &id
	}
	return s.list(ctx, vf, limit, offset)
}

// Activity is the full feed with requester and approver identity.
func (s *Service) Activity(ctx context.Context, status domain.BorrowStatus, limit, offset int) ([]domain.BorrowView, int64, error) {
	vf, err := statusFilter(status)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, vf, limit, offset)
}

// Public is the anonymous feed. Every entry is redacted.
func (s *Service) Public(ctx context.Context, limit, offset int) ([]domain.BorrowView, int64, error) {
	views, total, err := s.list(ctx, repository.BorrowViewFilter{Statuses: domain.PublicStatuses}, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range views {
		views[i] = views[i].Redacted()
	}
	return views, total, nil
}

func (s *Service) list(ctx context.Context, f repository.BorrowViewFilter, limit, offset int) ([]domain.BorrowView, int64, error) {
	views, total, err := s.repo.ListViews(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for i := range views {
		views[i].Decorate(now)
	}
	return views, total, nil
}

// statusFilter maps a query status onto stored statuses. APPROVED includes
// its ACTIVE synonym.
func statusFilter(status domain.BorrowStatus) (repository.BorrowViewFilter, error) {
	switch {
	case status == "":
		return repository.BorrowViewFilter{}, nil
	case status == domain.BorrowApproved:
		return repository.BorrowViewFilter{Statuses: []domain.BorrowStatus{domain.BorrowApproved, domain.BorrowActive}}, nil
	case status.Valid():
		return repository.BorrowViewFilter{Statuses: []domain.BorrowStatus{status}}, nil
	default:
		return repository.BorrowViewFilter{}, apperr.Validation("unknown borrow status %q", status)
	}
}

// afterTransition loads the joined view, then runs the best-effort side
// effects. The transition has already committed, so failures here only log.
func (s *Service) afterTransition(ctx context.Context, req *domain.BorrowRequest) *domain.BorrowView {
	if s.stats != nil {
		if err := s.stats.InvalidateStats(ctx); err != nil {
			log.Printf("stats_invalidate_failed request_id=%d error=%q", req.ID, err.Error())
		}
	}

	v, err := s.repo.GetView(ctx, req.ID)
	if err != nil {
		log.Printf("borrow_view_reload_failed request_id=%d error=%q", req.ID, err.Error())
		v = &domain.BorrowView{BorrowRequest: *req}
	}
	v.Decorate(s.now())

	if s.publisher != nil {
		s.publisher.Publish(*v)
	}
	return v
}
