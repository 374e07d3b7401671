package schedule

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Store persists timelines, computed critical paths, holidays and
// resource assignments in PostgreSQL.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// ----------------------
//      TIMELINES
// ----------------------

func (s *Store) ListTimelines(ctx context.Context, firmID int, projectID string) ([]TimelineTask, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, project_id, COALESCE(name,''),
		       start_date, end_date,
		       actual_start, actual_end,
		       COALESCE(dependencies, '{}'),
		       COALESCE(successors, '{}'),
		       created_at
		FROM project_timelines
		WHERE firm_id = $1 AND project_id = $2
		ORDER BY start_date, id
	`, firmID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []TimelineTask
	for rows.Next() {
		var (
			t                      TimelineTask
			actualStart, actualEnd sql.NullTime
			deps, succs            pq.StringArray
		)
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Name,
			&t.StartDate, &t.EndDate,
			&actualStart, &actualEnd,
			&deps, &succs,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		if actualStart.Valid {
			t.ActualStart = &actualStart.Time
		}
		if actualEnd.Valid {
			t.ActualEnd = &actualEnd.Time
		}
		t.Dependencies = deps
		t.Successors = succs
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CreateTimeline(ctx context.Context, firmID int, t TimelineTask) (TimelineTask, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO project_timelines
			(id, project_id, firm_id, name, start_date, end_date, dependencies, successors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, t.ID, t.ProjectID, firmID, t.Name, t.StartDate, t.EndDate,
		pq.Array(t.Dependencies), pq.Array(t.Successors))
	if err := row.Scan(&t.CreatedAt); err != nil {
		return TimelineTask{}, err
	}
	return t, nil
}

// UpdateTimeline writes the mutable fields and returns the stored row,
// so callers echo the real project_id and created_at rather than
// whatever the request carried.
func (s *Store) UpdateTimeline(ctx context.Context, firmID int, t TimelineTask) (TimelineTask, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE project_timelines SET
			name = $1,
			start_date = $2,
			end_date = $3,
			actual_start = $4,
			actual_end = $5,
			dependencies = $6,
			successors = $7
		WHERE firm_id = $8 AND id = $9
		RETURNING project_id, created_at
	`, t.Name, t.StartDate, t.EndDate,
		nullTime(t.ActualStart), nullTime(t.ActualEnd),
		pq.Array(t.Dependencies), pq.Array(t.Successors),
		firmID, t.ID)
	if err := row.Scan(&t.ProjectID, &t.CreatedAt); err != nil {
		return TimelineTask{}, err
	}
	return t, nil
}

func (s *Store) DeleteTimeline(ctx context.Context, firmID int, id string) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM project_timelines WHERE firm_id = $1 AND id = $2
	`, firmID, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ----------------------
//    CRITICAL PATHS
// ----------------------

// SaveCriticalPath upserts the latest snapshot for a project. Only the
// most recent computation is kept, matching the in-memory cache.
func (s *Store) SaveCriticalPath(ctx context.Context, cp *CriticalPath) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO critical_paths
			(project_id, task_ids, total_duration, start_date, end_date,
			 buffer_days, non_working_days, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (project_id) DO UPDATE SET
			task_ids = EXCLUDED.task_ids,
			total_duration = EXCLUDED.total_duration,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			buffer_days = EXCLUDED.buffer_days,
			non_working_days = EXCLUDED.non_working_days,
			calculated_at = EXCLUDED.calculated_at
	`, cp.ProjectID, pq.Array(cp.TaskIDs), cp.TotalDuration,
		cp.StartDate, cp.EndDate, cp.BufferDays, cp.NonWorkingDays, cp.LastCalculated)
	return err
}

func (s *Store) LoadCriticalPath(ctx context.Context, projectID string) (*CriticalPath, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT project_id, task_ids, total_duration, start_date, end_date,
		       buffer_days, non_working_days, calculated_at
		FROM critical_paths
		WHERE project_id = $1
	`, projectID)

	var (
		cp  CriticalPath
		ids pq.StringArray
	)
	if err := row.Scan(&cp.ProjectID, &ids, &cp.TotalDuration,
		&cp.StartDate, &cp.EndDate, &cp.BufferDays, &cp.NonWorkingDays,
		&cp.LastCalculated); err != nil {
		return nil, err
	}
	cp.TaskIDs = ids
	return &cp, nil
}

// ----------------------
//       HOLIDAYS
// ----------------------

func (s *Store) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT holiday_date, name, COALESCE(type, 'federal')
		FROM holidays
		ORDER BY holiday_date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hs []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.Date, &h.Name, &h.Type); err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}

func (s *Store) InsertHoliday(ctx context.Context, h Holiday) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO holidays (holiday_date, name, type)
		VALUES ($1, $2, $3)
	`, h.Date, h.Name, h.Type)
	return err
}

func (s *Store) DeleteHoliday(ctx context.Context, date time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		DELETE FROM holidays WHERE holiday_date = $1
	`, date)
	return err
}

// ----------------------
//  RESOURCE ASSIGNMENTS
// ----------------------

// ListConstraints loads a project's resource assignments grouped per
// resource, with capacity taken from the resources table (default 1).
func (s *Store) ListConstraints(ctx context.Context, projectID string) ([]ResourceConstraint, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT ra.resource_id, COALESCE(r.capacity, 1),
		       ra.task_id, ra.start_date, ra.end_date, COALESCE(ra.priority, 0)
		FROM resource_assignments ra
		LEFT JOIN resources r ON r.id = ra.resource_id
		WHERE ra.project_id = $1
		ORDER BY ra.resource_id, ra.start_date, ra.task_id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constraints []ResourceConstraint
	index := make(map[string]int)
	for rows.Next() {
		var (
			resourceID string
			capacity   int
			a          ResourceAssignment
		)
		if err := rows.Scan(&resourceID, &capacity, &a.TaskID, &a.StartDate, &a.EndDate, &a.Priority); err != nil {
			return nil, err
		}
		i, ok := index[resourceID]
		if !ok {
			i = len(constraints)
			index[resourceID] = i
			constraints = append(constraints, ResourceConstraint{
				ResourceID: resourceID,
				Capacity:   capacity,
			})
		}
		constraints[i].Assignments = append(constraints[i].Assignments, a)
	}
	return constraints, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
