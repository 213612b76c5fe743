package stats

import (
	"context"
	"log"
	"sort"
	"strconv"
	"time"

	"equiplend/internal/access"
	"equiplend/internal/cache"
	"equiplend/internal/domain"
	"equiplend/internal/repository"
)

const (
	topEquipmentLimit = 5
	trailingMonths    = 6
	monthLayout       = "2006-01"
)

// Repository defines the aggregate queries. A nil requesterID means every
// request.
type Repository interface {
	CountByStatus(ctx context.Context, requesterID *int64) (map[domain.BorrowStatus]int64, error)
	CountOverdue(ctx context.Context, requesterID *int64, now time.Time) (int64, error)
	TopEquipment(ctx context.Context, requesterID *int64, limit int) ([]repository.EquipmentCount, error)
	CreatedSince(ctx context.Context, requesterID *int64, since time.Time) ([]time.Time, error)
}

// Inventory counts live equipment per status.
type Inventory interface {
	CountByStatus(ctx context.Context) (map[domain.EquipmentStatus]int64, error)
}

// Cache stores computed statistics. *cache.Store satisfies it, nil included.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

type Counts struct {
	Pending       int64 `json:"pending"`
	Approved      int64 `json:"approved"`
	PendingReturn int64 `json:"pendingReturn"`
	Returned      int64 `json:"returned"`
	Rejected      int64 `json:"rejected"`
	Overdue       int64 `json:"overdue"`
	Total         int64 `json:"total"`
}

type TopItem struct {
	EquipmentID int64  `json:"equipmentId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Count       int64  `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Statistics is the dashboard payload. Scope is "all" for admins and "own"
// for everyone else. Inventory is only filled for the "all" scope.
type Statistics struct {
	Scope        string                           `json:"scope"`
	Counts       Counts                           `json:"counts"`
	TopEquipment []TopItem                        `json:"topEquipment"`
	Monthly      []MonthCount                     `json:"monthly"`
	Categories   []CategoryCount                  `json:"categories"`
	Inventory    map[domain.EquipmentStatus]int64 `json:"inventory,omitempty"`
	GeneratedAt  time.Time                        `json:"generatedAt"`
}

// Service aggregates request statistics
type Service struct {
	repo      Repository
	inventory Inventory
	cache     Cache
	now       func() time.Time
}

func NewService(repo Repository, inventory Inventory, c Cache) *Service {
	return &Service{
		repo:      repo,
		inventory: inventory,
		cache:     c,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get returns full statistics for admins and the caller's own otherwise.
func (s *Service) Get(ctx context.Context, actor domain.Actor) (*Statistics, error) {
	full := access.CanPerform(actor.Role, access.OpFullStatistics)

	var requesterID *int64
	scope, key := "all", cache.StatsKey("all")
	if !full {
		id := actor.ID
		requesterID = &id
		scope, key = "own", cache.StatsKey("user:"+strconv.FormatInt(actor.ID, 10))
	}

	if s.cache != nil {
		var cached Statistics
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Printf("stats_cache_read_failed key=%s error=%q", key, err.Error())
		} else if found {
			return &cached, nil
		}
	}

	out, err := s.compute(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	out.Scope = scope
	if full && s.inventory != nil {
		out.Inventory, err = s.inventory.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
	}
	if !full {
		out.Counts.Total -= out.Counts.Rejected
		out.Counts.Rejected = 0
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out); err != nil {
			log.Printf("stats_cache_write_failed key=%s error=%q", key, err.Error())
		}
	}
	return out, nil
}

func (s *Service) compute(ctx context.Context, requesterID *int64) (*Statistics, error) {
	now := s.now()

	byStatus, err := s.repo.CountByStatus(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.CountOverdue(ctx, requesterID, now)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopEquipment(ctx, requesterID, topEquipmentLimit)
	if err != nil {
		return nil, err
	}
	months := monthWindow(now, trailingMonths)
	created, err := s.repo.CreatedSince(ctx, requesterID, monthStart(now, 1-trailingMonths))
	if err != nil {
		return nil, err
	}

	out := &Statistics{
		Counts:       countsFrom(byStatus, overdue),
		TopEquipment: make([]TopItem, 0, len(top)),
		Monthly:      bucketByMonth(months, created),
		Categories:   categoriesOf(top),
		GeneratedAt:  now,
	}
	for _, t := range top {
		out.TopEquipment = append(out.TopEquipment, TopItem(t))
	}
	return out, nil
}

func countsFrom(byStatus map[domain.BorrowStatus]int64, overdue int64) Counts {
	c := Counts{
		Pending:       byStatus[domain.BorrowPending],
		Approved:      byStatus[domain.BorrowApproved] + byStatus[domain.BorrowActive],
		PendingReturn: byStatus[domain.BorrowPendingReturn],
		Returned:      byStatus[domain.BorrowReturned],
		Rejected:      byStatus[domain.BorrowRejected],
		Overdue:       overdue,
	}
	for _, n := range byStatus {
		c.Total += n
	}
	return c
}

// monthStart is midnight UTC on the first day of the month offset months
// away from now.
func monthStart(now time.Time, offset int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
}

// monthWindow lists n months ending with the month of now, oldest first.
func monthWindow(now time.Time, n int) []MonthCount {
	out := make([]MonthCount, n)
	for i := 0; i < n; i++ {
		out[i] = MonthCount{Month: monthStart(now, i-(n-1)).Format(monthLayout)}
	}
	return out
}

func bucketByMonth(months []MonthCount, created []time.Time) []MonthCount {
	idx := make(map[string]int, len(months))
	for i, m := range months {
		idx[m.Month] = i
	}
	for _, t := range created {
		if i, ok := idx[t.UTC().Format(monthLayout)]; ok {
			months[i].Count++
		}
	}
	return months
}

// categoriesOf sums request counts per category over the top equipment.
func categoriesOf(top []repository.EquipmentCount) []CategoryCount {
	sums := map[string]int64{}
	for _, t := range top {
		sums[t.Category] += t.Count
	}
	out := make([]CategoryCount, 0, len(sums))
	for cat, n := range sums {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
