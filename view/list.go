package view

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/stsysd/nisshi/aggregate"
	"github.com/stsysd/nisshi/model"
	"github.com/stsysd/nisshi/store"
)

// ListView coordinates the flat diary list page: a project filter that
// fetches at most once per filter value, a pure client-side search box,
// and a sort toggle.
type ListView struct {
	mu     sync.Mutex
	userID uuid.UUID
	engine *aggregate.Engine
	store  store.Store

	status Status
	err    error

	// fetched caches the entry list per filter value, so switching back
	// to an already-seen filter does not refetch.
	fetched map[string][]model.DiaryEntry
	filter  model.ProjectFilter

	projects       []model.ProjectRef
	projectsLoaded bool

	search string
	desc   bool

	// gen is bumped by Invalidate so a fetch that resolves afterwards
	// does not repopulate the cleared cache.
	gen int
}

// ListSnapshot is the state exposed to the presentation layer. Entries
// already has the search and sort applied.
type ListSnapshot struct {
	Status   Status
	Err      error
	Entries  []model.DiaryEntry
	Projects []model.ProjectRef
	Filter   model.ProjectFilter
	Search   string
	Desc     bool
}

// NewListView creates a diary list coordinator for the given user.
func NewListView(userID uuid.UUID, engine *aggregate.Engine, s store.Store) *ListView {
	return &ListView{
		userID:  userID,
		engine:  engine,
		store:   s,
		status:  StatusIdle,
		fetched: map[string][]model.DiaryEntry{},
		filter:  model.AllProjects(),
		desc:    true,
	}
}

// Load performs the initial fetch for the current filter, plus the
// project list for the dropdown. Already-loaded filters are served from
// the cache.
func (v *ListView) Load(ctx context.Context) error {
	return v.fetch(ctx, v.currentFilter())
}

// SetProjectFilter switches the list to one project (or all). Each
// distinct filter value is fetched at most once; revisits hit the cache.
func (v *ListView) SetProjectFilter(ctx context.Context, filter model.ProjectFilter) error {
	v.mu.Lock()
	v.filter = filter
	v.mu.Unlock()
	return v.fetch(ctx, filter)
}

func (v *ListView) currentFilter() model.ProjectFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *ListView) fetch(ctx context.Context, filter model.ProjectFilter) error {
	v.mu.Lock()
	if _, ok := v.fetched[filter.Key()]; ok && v.projectsLoaded {
		v.status = StatusReady
		v.mu.Unlock()
		return nil
	}
	v.status = StatusLoading
	needProjects := !v.projectsLoaded
	gen := v.gen
	v.mu.Unlock()

	fail := func(err error) error {
		v.mu.Lock()
		if v.gen == gen {
			v.status = StatusError
			v.err = err
		}
		v.mu.Unlock()
		return err
	}

	entries, err := v.engine.BuildFlatDiaryList(ctx, v.userID, &filter)
	if err != nil {
		return fail(err)
	}

	var projects []model.ProjectRef
	if needProjects {
		list, err := v.store.ListProjects(ctx, v.userID)
		if err != nil {
			return fail(err)
		}
		for _, p := range list {
			projects = append(projects, model.ProjectRef{ID: p.ID, Name: p.Name})
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Invalidated while the fetch was in flight; the cache stays empty.
	if v.gen != gen {
		return nil
	}
	v.fetched[filter.Key()] = entries
	if needProjects {
		v.projects = projects
		v.projectsLoaded = true
	}
	v.err = nil
	v.status = StatusReady
	return nil
}

// SetSearch updates the search term. Filtering is purely client-side.
func (v *ListView) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = term
}

// ToggleSort flips between newest-first and oldest-first.
func (v *ListView) ToggleSort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.desc = !v.desc
}

// Remove deletes one diary from the list: the remote delete goes first,
// and on success the entry is dropped from every cached filter view.
func (v *ListView) Remove(ctx context.Context, projectID, diaryID uuid.UUID) error {
	if err := v.store.DeleteDiary(ctx, v.userID, projectID, diaryID); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for key, entries := range v.fetched {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID != diaryID {
				kept = append(kept, e)
			}
		}
		v.fetched[key] = kept
	}
	return nil
}

// Invalidate drops all cached data, e.g. on sign-out. In-flight fetch
// responses are discarded rather than applied.
func (v *ListView) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.fetched = map[string][]model.DiaryEntry{}
	v.projects = nil
	v.projectsLoaded = false
	v.filter = model.AllProjects()
	v.search = ""
	v.desc = true
	v.err = nil
	v.status = StatusIdle
}

// Snapshot returns the visible entries with search and sort applied.
func (v *ListView) Snapshot() ListSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := ListSnapshot{
		Status:   v.status,
		Err:      v.err,
		Projects: v.projects,
		Filter:   v.filter,
		Search:   v.search,
		Desc:     v.desc,
	}
	cached, ok := v.fetched[v.filter.Key()]
	if !ok {
		return snap
	}
	entries := aggregate.Filter(cached, v.search)
	out := make([]model.DiaryEntry, len(entries))
	copy(out, entries)
	aggregate.SortEntries(out, v.desc)
	snap.Entries = out
	return snap
}
