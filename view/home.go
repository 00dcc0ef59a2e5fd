package view

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/aggregate"
	"github.com/stsysd/nisshi/model"
	"github.com/stsysd/nisshi/store"
)

// HomeView coordinates the home/calendar page: calendar events, summary
// statistics, the recent-diaries preview, the project filter dropdown,
// date selection and the detail modal with its edit sub-state.
type HomeView struct {
	mu     sync.Mutex
	userID uuid.UUID
	engine *aggregate.Engine
	store  store.Store

	status Status
	err    error
	data   *model.CalendarData

	// client-side sub-state, no fetches involved
	projectFilter *uuid.UUID
	selectedDate  string

	// detail modal
	selected        *model.Diary
	selectedProject model.ProjectRef
	editing         bool
	pendingSelect   uuid.UUID
	actionErr       error

	// gen is bumped by Invalidate; in-flight responses from an older
	// generation are discarded instead of repopulating cleared state.
	gen    int
	loaded bool
}

// HomeSnapshot is the immutable state exposed to the presentation layer.
type HomeSnapshot struct {
	Status        Status
	Err           error
	Data          *model.CalendarData
	Events        []model.CalendarEvent // events after the project filter
	SelectedDate  string
	DayEvents     []model.CalendarEvent // events on the selected date
	Selected      *model.Diary
	SelectedProject model.ProjectRef
	Editing       bool
	ActionErr     error
}

// NewHomeView creates a home page coordinator for the given user.
func NewHomeView(userID uuid.UUID, engine *aggregate.Engine, s store.Store) *HomeView {
	return &HomeView{
		userID: userID,
		engine: engine,
		store:  s,
		status: StatusIdle,
	}
}

// Load fetches the aggregated calendar data. It runs at most once per
// coordinator lifetime; use Refresh for an explicit refetch.
func (v *HomeView) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.loaded || v.status == StatusLoading {
		v.mu.Unlock()
		return nil
	}
	v.status = StatusLoading
	gen := v.gen
	v.mu.Unlock()

	return v.fetch(ctx, gen)
}

// Refresh refetches the aggregated data unconditionally.
func (v *HomeView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.status = StatusLoading
	gen := v.gen
	v.mu.Unlock()

	return v.fetch(ctx, gen)
}

func (v *HomeView) fetch(ctx context.Context, gen int) error {
	data, err := v.engine.BuildCalendarAndStats(ctx, v.userID)

	v.mu.Lock()
	defer v.mu.Unlock()

	// The coordinator was invalidated while the fetch was in flight.
	if v.gen != gen {
		return nil
	}
	if err != nil {
		v.status = StatusError
		v.err = err
		return err
	}
	v.data = data
	v.err = nil
	v.status = StatusReady
	v.loaded = true
	return nil
}

// SetProjectFilter narrows the calendar to one project. Nil shows all.
// This is a pure client-side recomputation; no fetch is triggered.
func (v *HomeView) SetProjectFilter(projectID *uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.projectFilter = projectID
}

// SelectDate opens the per-day diary list for a clicked calendar date.
func (v *HomeView) SelectDate(date string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedDate = date
}

// CloseDate closes the per-day diary list.
func (v *HomeView) CloseDate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedDate = ""
}

// SelectDiary opens the detail modal for one diary, fetching its full
// body. Selecting another diary while a fetch is outstanding discards
// the stale response: the response is matched against the pending target
// before it is applied.
func (v *HomeView) SelectDiary(ctx context.Context, projectID, diaryID uuid.UUID) error {
	v.mu.Lock()
	if v.status != StatusReady {
		v.mu.Unlock()
		return nil
	}
	v.pendingSelect = diaryID
	gen := v.gen
	projectName := v.projectName(projectID)
	v.mu.Unlock()

	diary, err := v.store.GetDiary(ctx, v.userID, projectID, diaryID)

	v.mu.Lock()
	defer v.mu.Unlock()

	// A newer selection or an Invalidate has superseded this response.
	if v.gen != gen || v.pendingSelect != diaryID {
		return nil
	}
	v.pendingSelect = uuid.Nil

	if err != nil {
		v.actionErr = err
		v.selected = nil
		v.editing = false
		return err
	}
	v.selected = diary
	v.selectedProject = model.ProjectRef{ID: projectID, Name: projectName}
	v.selectedDate = ""
	v.editing = false
	v.actionErr = nil
	return nil
}

// projectName looks up a project name in the loaded data. Callers hold the lock.
func (v *HomeView) projectName(projectID uuid.UUID) string {
	if v.data == nil {
		return ""
	}
	for _, p := range v.data.Projects {
		if p.ID == projectID {
			return p.Name
		}
	}
	return ""
}

// CloseDetail closes the detail modal and returns to Ready.
func (v *HomeView) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
	v.editing = false
	v.actionErr = nil
}

// BeginEdit switches the open detail modal into edit mode.
func (v *HomeView) BeginEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != nil {
		v.editing = true
	}
}

// CancelEdit leaves edit mode without saving.
func (v *HomeView) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing = false
}

// SubmitEdit commits the edit: the remote write goes first, and the
// local projections (selected diary, calendar event titles, statistics)
// are patched only after the write is confirmed. A failed write leaves
// every local collection untouched.
func (v *HomeView) SubmitEdit(ctx context.Context, edit DiaryEdit) error {
	v.mu.Lock()
	if v.selected == nil || !v.editing {
		v.mu.Unlock()
		return nil
	}
	updated := applyEdit(*v.selected, edit)
	hadTrouble := v.selected.HasTroubleshooting()
	v.mu.Unlock()

	if err := v.store.UpdateDiary(ctx, v.userID, &updated); err != nil {
		v.mu.Lock()
		v.actionErr = err
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.selected = &updated
	v.editing = false
	v.actionErr = nil

	if v.data == nil {
		return nil
	}

	// Patch the event title locally instead of re-aggregating.
	for i := range v.data.Events {
		if v.data.Events[i].DiaryID == updated.ID {
			v.data.Events[i].Title = updated.Title
		}
	}
	for i := range v.data.Recent {
		if v.data.Recent[i].DiaryID == updated.ID {
			v.data.Recent[i].Title = updated.Title
		}
	}

	// Adjust the troubleshooting counters incrementally.
	if hadTrouble != updated.HasTroubleshooting() {
		delta := 1
		if hadTrouble {
			delta = -1
		}
		v.data.Stats.TroubleshootingCount += delta
		if sameMonth(updated) {
			v.data.Stats.ThisMonthTroubleCount += delta
		}
		v.data.Message = aggregate.SummaryMessage(v.data.Stats)
	}
	return nil
}

// Delete removes the selected diary: the remote delete goes first; on
// success the diary is removed from every local derived collection and
// the affected counters are decremented. A failed delete changes nothing.
func (v *HomeView) Delete(ctx context.Context) error {
	v.mu.Lock()
	if v.selected == nil {
		v.mu.Unlock()
		return nil
	}
	target := *v.selected
	v.mu.Unlock()

	if err := v.store.DeleteDiary(ctx, v.userID, target.ProjectID, target.ID); err != nil {
		v.mu.Lock()
		v.actionErr = err
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.selected = nil
	v.editing = false
	v.actionErr = nil

	if v.data == nil {
		return nil
	}

	events := v.data.Events[:0]
	for _, ev := range v.data.Events {
		if ev.DiaryID != target.ID {
			events = append(events, ev)
		}
	}
	v.data.Events = events
	v.data.Recent = aggregate.RecentEvents(v.data.Events, 3)

	v.data.Stats.DiaryCount--
	if target.HasTroubleshooting() {
		v.data.Stats.TroubleshootingCount--
	}
	if sameMonth(target) {
		v.data.Stats.ThisMonthDiaryCount--
		if target.HasTroubleshooting() {
			v.data.Stats.ThisMonthTroubleCount--
		}
	}
	v.data.Message = aggregate.SummaryMessage(v.data.Stats)
	return nil
}

// Invalidate drops all cached data, e.g. on sign-out. Responses from
// fetches still in flight are discarded rather than applied.
func (v *HomeView) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.data = nil
	v.selected = nil
	v.editing = false
	v.selectedDate = ""
	v.projectFilter = nil
	v.pendingSelect = uuid.Nil
	v.err = nil
	v.actionErr = nil
	v.status = StatusIdle
	v.loaded = false
}

// Snapshot returns the current page state for rendering.
func (v *HomeView) Snapshot() HomeSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := HomeSnapshot{
		Status:          v.status,
		Err:             v.err,
		Data:            v.data,
		SelectedDate:    v.selectedDate,
		Selected:        v.selected,
		SelectedProject: v.selectedProject,
		Editing:         v.editing,
		ActionErr:       v.actionErr,
	}
	if v.data == nil {
		return snap
	}

	for _, ev := range v.data.Events {
		if v.projectFilter != nil && ev.ProjectID != *v.projectFilter {
			continue
		}
		snap.Events = append(snap.Events, ev)
		if v.selectedDate != "" && ev.Date == v.selectedDate {
			snap.DayEvents = append(snap.DayEvents, ev)
		}
	}
	return snap
}

// applyEdit merges the edit into a copy of the diary. Nil fields keep
// the current value; nil Tags keep existing tags, empty Tags clear them.
func applyEdit(d model.Diary, edit DiaryEdit) model.Diary {
	if edit.Title != nil {
		d.Title = *edit.Title
	}
	if edit.Progress != nil {
		d.Progress = *edit.Progress
	}
	if edit.Problem != nil {
		d.Troubleshooting.Problem = *edit.Problem
	}
	if edit.Solution != nil {
		d.Troubleshooting.Solution = *edit.Solution
	}
	if edit.Retrospective != nil {
		d.Retrospective = *edit.Retrospective
	}
	if edit.Tags != nil {
		d.Tags = edit.Tags
	}
	return d
}

// sameMonth reports whether the diary was created in the current
// wall-clock month, matching the this-month counters.
func sameMonth(d model.Diary) bool {
	now := nowFunc()
	created := d.CreatedAt.Local()
	return created.Month() == now.Month() && created.Year() == now.Year()
}
