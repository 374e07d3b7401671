package schedule

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"daritana-backend/internal/analytics"
	"daritana-backend/internal/auth"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeScheduleError maps core errors onto HTTP statuses: bad input is
// 400, a dependency cycle is 422, anything else is 500.
func writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrCycle):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "schedule error: "+err.Error(), http.StatusInternalServerError)
	}
}

// ----------------------
//   TIMELINE HANDLERS
// ----------------------

func GetTimelinesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fid, ok := auth.FirmIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		projectID := r.URL.Query().Get("project_id")
		if projectID == "" {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}

		tasks, err := store.ListTimelines(r.Context(), fid, projectID)
		if err != nil {
			http.Error(w, "db query error", http.StatusInternalServerError)
			return
		}
		if tasks == nil {
			tasks = []TimelineTask{}
		}
		writeJSON(w, tasks)
	}
}

func CreateTimelineHandler(dbx *sql.DB, store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fid, _ := auth.FirmIDFromContext(r.Context())

		var body TimelineTask
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ProjectID == "" {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}
		if body.EndDate.Before(body.StartDate) {
			http.Error(w, "end_date precedes start_date", http.StatusBadRequest)
			return
		}
		if body.ID == "" {
			body.ID = uuid.NewString()
		}
		if body.Dependencies == nil {
			body.Dependencies = []string{}
		}
		if body.Successors == nil {
			body.Successors = []string{}
		}

		created, err := store.CreateTimeline(r.Context(), fid, body)
		if err != nil {
			http.Error(w, "db insert error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventTimelineCreated, map[string]any{
			"project_id": created.ProjectID,
			"task_id":    created.ID,
			"duration":   created.DurationDays(),
			"deps":       len(created.Dependencies),
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, created)
	}
}

func UpdateTimelineHandler(dbx *sql.DB, store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fid, _ := auth.FirmIDFromContext(r.Context())

		var body TimelineTask
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ID == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if body.EndDate.Before(body.StartDate) {
			http.Error(w, "end_date precedes start_date", http.StatusBadRequest)
			return
		}

		updated, err := store.UpdateTimeline(r.Context(), fid, body)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "timeline not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db update error", http.StatusInternalServerError)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventTimelineUpdated, map[string]any{
			"project_id": updated.ProjectID,
			"task_id":    updated.ID,
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, updated)
	}
}

func DeleteTimelineHandler(dbx *sql.DB, store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fid, _ := auth.FirmIDFromContext(r.Context())

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		if err := store.DeleteTimeline(r.Context(), fid, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "timeline not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db delete error", http.StatusInternalServerError)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventTimelineDeleted, map[string]any{
			"task_id": id,
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, map[string]any{"ok": true})
	}
}

// ----------------------
//   SCHEDULE HANDLERS
// ----------------------

// RecalculateHandler computes the critical path for a project. Tasks
// may be supplied inline; otherwise the project's stored timelines are
// used.
func RecalculateHandler(dbx *sql.DB, store *Store, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fid, _ := auth.FirmIDFromContext(r.Context())

		var body struct {
			ProjectID string         `json:"project_id"`
			Tasks     []TimelineTask `json:"tasks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ProjectID == "" {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}

		tasks := body.Tasks
		if len(tasks) == 0 {
			var err error
			tasks, err = store.ListTimelines(r.Context(), fid, body.ProjectID)
			if err != nil {
				http.Error(w, "db query error", http.StatusInternalServerError)
				return
			}
		}

		cp, err := svc.Recalculate(r.Context(), body.ProjectID, tasks)
		if err != nil {
			writeScheduleError(w, err)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventScheduleRecalculated, map[string]any{
			"project_id":     cp.ProjectID,
			"tasks":          len(tasks),
			"critical":       len(cp.TaskIDs),
			"total_duration": cp.TotalDuration,
			"buffer_days":    cp.BufferDays,
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, cp)
	}
}

// GetCriticalPathHandler returns the cached snapshot, falling back to
// the persisted one when this process has not computed it yet.
func GetCriticalPathHandler(store *Store, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		projectID := r.URL.Query().Get("project_id")
		if projectID == "" {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}

		if cp, ok := svc.Cached(projectID); ok {
			writeJSON(w, cp)
			return
		}

		cp, err := store.LoadCriticalPath(r.Context(), projectID)
		if err != nil {
			http.Error(w, "no critical path computed", http.StatusNotFound)
			return
		}
		writeJSON(w, cp)
	}
}

func LevelResourcesHandler(dbx *sql.DB, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Constraints []ResourceConstraint `json:"constraints"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		results := svc.LevelResources(body.Constraints)
		if results == nil {
			results = []LevelingResult{}
		}

		shifted := 0
		for _, res := range results {
			if res.Shifted {
				shifted++
			}
		}
		env := analytics.FromRequest(r)
		env.UserID = uid
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventResourcesLeveled, map[string]any{
			"constraints": len(body.Constraints),
			"shifted":     shifted,
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, results)
	}
}

func ConflictsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		projectID := r.URL.Query().Get("project_id")
		if projectID == "" {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}

		conflicts, err := svc.CheckConflicts(r.Context(), projectID)
		if err != nil {
			http.Error(w, "db query error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, conflicts)
	}
}

func GenerateMilestonesHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			ProjectID string `json:"project_id"`
			Phase     string `json:"phase"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ProjectID == "" {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}

		milestones := GenerateMilestones(body.ProjectID, body.Phase)

		env := analytics.FromRequest(r)
		env.UserID = uid
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventMilestonesGenerated, map[string]any{
			"project_id": body.ProjectID,
			"phase":      body.Phase,
			"count":      len(milestones),
		}, analytics.SourceEventKeyFromRequest(r))

		writeJSON(w, milestones)
	}
}

// ----------------------
//   CALENDAR HANDLERS
// ----------------------

func GetHolidaysHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, svc.Calendar().Holidays())
	}
}

func AddHolidayHandler(store *Store, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Date string `json:"date"`
			Name string `json:"name"`
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		date, err := time.ParseInLocation(dateLayout, body.Date, time.UTC)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if body.Type == "" {
			body.Type = "firm"
		}

		h := Holiday{Date: date, Name: body.Name, Type: body.Type}
		svc.Calendar().AddHoliday(h)
		if store != nil {
			_ = store.InsertHoliday(r.Context(), h)
		}
		writeJSON(w, h)
	}
}

func RemoveHolidayHandler(store *Store, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		date, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("date"), time.UTC)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		svc.Calendar().RemoveHoliday(date)
		if store != nil {
			_ = store.DeleteHoliday(r.Context(), date)
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func GetGanttConfigHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, svc.Calendar().Config())
	}
}

func UpdateGanttConfigHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var patch GanttConfigPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		writeJSON(w, svc.Calendar().UpdateConfig(patch))
	}
}

// WorkingDaysHandler reports working days between two dates, the piece
// of the calendar the gantt and reporting views consume.
func WorkingDaysHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		from, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("from"), time.UTC)
		if err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("to"), time.UTC)
		if err != nil {
			http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if to.Before(from) {
			http.Error(w, "to precedes from", http.StatusBadRequest)
			return
		}

		cal := svc.Calendar()
		nonWorking := cal.NonWorkingDatesIn(from, to)
		dates := make([]string, 0, len(nonWorking))
		for _, d := range nonWorking {
			dates = append(dates, d.Format(dateLayout))
		}
		writeJSON(w, map[string]any{
			"from":              from.Format(dateLayout),
			"to":                to.Format(dateLayout),
			"working_days":      cal.WorkingDaysBetween(from, to),
			"non_working_dates": dates,
		})
	}
}
