package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gramseva-be/models"
)

// MemoryProblemStore is a mutex-guarded in-memory ProblemStore used by unit
// tests and local development without MongoDB.
type MemoryProblemStore struct {
	mu       sync.Mutex
	seq      int64
	problems []models.Problem
}

func NewMemoryProblemStore() *MemoryProblemStore {
	return &MemoryProblemStore{}
}

func (s *MemoryProblemStore) Insert(ctx context.Context, p *models.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	p.ID = problemIDBase + s.seq
	s.problems = append(s.problems, *p)
	return nil
}

func (s *MemoryProblemStore) All(ctx context.Context) ([]models.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Problem, len(s.problems))
	copy(out, s.problems)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryProblemStore) ByID(ctx context.Context, id int64) (*models.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.problems {
		if s.problems[i].ID == id {
			p := s.problems[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryProblemStore) SetStatus(ctx context.Context, id int64, status models.ProblemStatus, at time.Time) (*models.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.problems {
		if s.problems[i].ID == id {
			s.problems[i].Status = status
			t := at
			s.problems[i].StatusUpdatedAt = &t
			p := s.problems[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryProblemStore) Stats(ctx context.Context) (*Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCategory := make(map[string]int64)
	byStatus := make(map[string]int64)
	for status := range models.ValidStatuses {
		byStatus[string(status)] = 0
	}

	var open int64
	dayCounts := make(map[string]int64)
	for _, p := range s.problems {
		byCategory[string(p.Category)]++
		byStatus[string(p.Status)]++
		if p.Status == models.Pending || p.Status == models.InProgress {
			open++
		}
		dayCounts[p.CreatedAt.Format("2006-01-02")]++
	}

	categories := make([]CategoryCount, 0, len(byCategory))
	for name, value := range byCategory {
		categories = append(categories, CategoryCount{Name: name, Value: value})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	var last7Days []DayCount
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		key := date.Format("2006-01-02")
		last7Days = append(last7Days, DayCount{Date: key, Count: dayCounts[key]})
	}

	return &Analytics{
		ByCategory:    categories,
		ByStatus:      byStatus,
		Last7Days:     last7Days,
		TotalProblems: int64(len(s.problems)),
		OpenProblems:  open,
	}, nil
}

// MemoryCheckStore is the in-memory CheckStore counterpart.
type MemoryCheckStore struct {
	mu     sync.Mutex
	checks map[string]time.Time
}

func NewMemoryCheckStore() *MemoryCheckStore {
	return &MemoryCheckStore{checks: make(map[string]time.Time)}
}

func (s *MemoryCheckStore) LastCheck(ctx context.Context, identityKey string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.checks[identityKey]
	return t, ok, nil
}

func (s *MemoryCheckStore) SetLastCheck(ctx context.Context, identityKey string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checks[identityKey] = t
	return nil
}
