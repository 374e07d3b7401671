package schedule

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Service owns the per-project critical-path cache and the shared
// calendar, and serializes recomputation so two concurrent recompute
// requests for the same project cannot interleave.
type Service struct {
	log   zerolog.Logger
	store *Store // optional; nil means in-memory only
	cal   *Calendar

	mu    sync.RWMutex
	cache map[string]*CriticalPath
}

func NewService(log zerolog.Logger, store *Store, cal *Calendar) *Service {
	if cal == nil {
		cal = NewCalendar(MalaysianFederalHolidays())
	}
	return &Service{
		log:   log,
		store: store,
		cal:   cal,
		cache: make(map[string]*CriticalPath),
	}
}

// Calendar exposes the shared holiday/working-day policy.
func (s *Service) Calendar() *Calendar { return s.cal }

// Recalculate computes the critical path for a project's tasks, caches
// it (overwriting any previous snapshot) and persists it when a store
// is attached.
func (s *Service) Recalculate(ctx context.Context, projectID string, tasks []TimelineTask) (*CriticalPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, err := CalculateCriticalPath(projectID, tasks, s.cal)
	if err != nil {
		return nil, err
	}
	s.cache[projectID] = cp

	if s.store != nil {
		if err := s.store.SaveCriticalPath(ctx, cp); err != nil {
			// The computation itself is still good; persistence is
			// best-effort, same as the event log.
			s.log.Error().Err(err).Str("project_id", projectID).Msg("persist critical path failed")
		}
	}

	s.log.Info().
		Str("project_id", projectID).
		Int("tasks", len(tasks)).
		Int("critical", len(cp.TaskIDs)).
		Int("total_duration", cp.TotalDuration).
		Msg("critical path recalculated")
	return cp, nil
}

// Cached returns the last computed snapshot for a project, if any.
func (s *Service) Cached(projectID string) (*CriticalPath, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.cache[projectID]
	return cp, ok
}

// LevelResources proposes adjusted windows for the given constraints.
// Pure function over its input; nothing is cached or persisted.
func (s *Service) LevelResources(constraints []ResourceConstraint) []LevelingResult {
	results := LevelResources(constraints)
	shifted := 0
	for _, r := range results {
		if r.Shifted {
			shifted++
		}
	}
	s.log.Info().
		Int("constraints", len(constraints)).
		Int("results", len(results)).
		Int("shifted", shifted).
		Msg("resource leveling run")
	return results
}

// CheckConflicts loads a project's resource assignments from the store
// and scans them for over-allocation.
func (s *Service) CheckConflicts(ctx context.Context, projectID string) ([]ResourceConflict, error) {
	if s.store == nil {
		return []ResourceConflict{}, nil
	}
	constraints, err := s.store.ListConstraints(ctx, projectID)
	if err != nil {
		return nil, err
	}
	conflicts := CheckResourceConflicts(constraints)
	if conflicts == nil {
		conflicts = []ResourceConflict{}
	}
	return conflicts, nil
}
