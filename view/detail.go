package view

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/aggregate"
	"github.com/stsysd/nisshi/model"
	"github.com/stsysd/nisshi/store"
)

// DetailView coordinates a single project page: the project header, its
// diary timeline, and the per-diary detail modal with edit and delete.
type DetailView struct {
	mu        sync.Mutex
	userID    uuid.UUID
	projectID uuid.UUID
	engine    *aggregate.Engine
	store     store.Store

	status Status
	err    error

	project *model.Project
	entries []model.DiaryEntry
	tags    []string

	selected      *model.Diary
	editing       bool
	pendingSelect uuid.UUID
	actionErr     error

	// gen is bumped by Invalidate so in-flight responses from before the
	// teardown are discarded.
	gen    int
	loaded bool
}

// DetailSnapshot is the state exposed to the presentation layer.
type DetailSnapshot struct {
	Status    Status
	Err       error
	Project   *model.Project
	Entries   []model.DiaryEntry
	Tags      []string
	Selected  *model.Diary
	Editing   bool
	ActionErr error
}

// NewDetailView creates a project page coordinator.
func NewDetailView(userID, projectID uuid.UUID, engine *aggregate.Engine, s store.Store) *DetailView {
	return &DetailView{
		userID:    userID,
		projectID: projectID,
		engine:    engine,
		store:     s,
		status:    StatusIdle,
	}
}

// Load fetches the project, its diary timeline and its tag set. It runs
// at most once per coordinator lifetime; use Refresh for a refetch.
func (v *DetailView) Load(ctx context.Context) error {
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

// Refresh refetches the project page unconditionally.
func (v *DetailView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.status = StatusLoading
	gen := v.gen
	v.mu.Unlock()

	return v.fetch(ctx, gen)
}

func (v *DetailView) fetch(ctx context.Context, gen int) error {
	fail := func(err error) error {
		v.mu.Lock()
		if v.gen == gen {
			v.status = StatusError
			v.err = err
		}
		v.mu.Unlock()
		return err
	}

	project, err := v.store.GetProject(ctx, v.userID, v.projectID)
	if err != nil {
		return fail(err)
	}
	filter := model.FilterByProject(v.projectID)
	entries, err := v.engine.BuildFlatDiaryList(ctx, v.userID, &filter)
	if err != nil {
		return fail(err)
	}
	tags, err := v.store.GetProjectTags(ctx, v.userID, v.projectID)
	if err != nil {
		return fail(err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Invalidated while the fetch was in flight.
	if v.gen != gen {
		return nil
	}
	v.project = project
	v.entries = entries
	v.tags = tags
	v.err = nil
	v.status = StatusReady
	v.loaded = true
	return nil
}

// SelectDiary opens the detail modal for one timeline entry. Responses
// for superseded selections are discarded.
func (v *DetailView) SelectDiary(ctx context.Context, diaryID uuid.UUID) error {
	v.mu.Lock()
	if v.status != StatusReady {
		v.mu.Unlock()
		return nil
	}
	v.pendingSelect = diaryID
	gen := v.gen
	v.mu.Unlock()

	diary, err := v.store.GetDiary(ctx, v.userID, v.projectID, diaryID)

	v.mu.Lock()
	defer v.mu.Unlock()

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
	v.editing = false
	v.actionErr = nil
	return nil
}

// CloseDetail closes the modal.
func (v *DetailView) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
	v.editing = false
	v.actionErr = nil
}

// BeginEdit switches the open modal into edit mode.
func (v *DetailView) BeginEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != nil {
		v.editing = true
	}
}

// CancelEdit leaves edit mode without saving.
func (v *DetailView) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing = false
}

// SubmitEdit writes the edit remotely, then patches the timeline entry
// in place. A failed write leaves the timeline untouched.
func (v *DetailView) SubmitEdit(ctx context.Context, edit DiaryEdit) error {
	v.mu.Lock()
	if v.selected == nil || !v.editing {
		v.mu.Unlock()
		return nil
	}
	updated := applyEdit(*v.selected, edit)
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

	for i := range v.entries {
		if v.entries[i].ID == updated.ID {
			v.entries[i].Title = updated.Title
			v.entries[i].Progress = updated.Progress
			v.entries[i].Tags = updated.Tags
			v.entries[i].HasTrouble = updated.HasTroubleshooting()
		}
	}
	return nil
}

// Delete removes the selected diary remotely, then drops it from the
// timeline. A failed delete changes nothing.
func (v *DetailView) Delete(ctx context.Context) error {
	v.mu.Lock()
	if v.selected == nil {
		v.mu.Unlock()
		return nil
	}
	targetID := v.selected.ID
	v.mu.Unlock()

	if err := v.store.DeleteDiary(ctx, v.userID, v.projectID, targetID); err != nil {
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

	kept := v.entries[:0]
	for _, e := range v.entries {
		if e.ID != targetID {
			kept = append(kept, e)
		}
	}
	v.entries = kept
	return nil
}

// Invalidate drops all cached data, e.g. on sign-out. In-flight fetch
// responses are discarded rather than applied.
func (v *DetailView) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.project = nil
	v.entries = nil
	v.tags = nil
	v.selected = nil
	v.editing = false
	v.pendingSelect = uuid.Nil
	v.err = nil
	v.actionErr = nil
	v.status = StatusIdle
	v.loaded = false
}

// Snapshot returns the current page state for rendering.
func (v *DetailView) Snapshot() DetailSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries := make([]model.DiaryEntry, len(v.entries))
	copy(entries, v.entries)
	return DetailSnapshot{
		Status:    v.status,
		Err:       v.err,
		Project:   v.project,
		Entries:   entries,
		Tags:      v.tags,
		Selected:  v.selected,
		Editing:   v.editing,
		ActionErr: v.actionErr,
	}
}
