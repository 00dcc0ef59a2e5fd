// Package aggregate derives the calendar, statistics and list views from
// the per-project diary collections.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stsysd/nisshi/model"
	"github.com/stsysd/nisshi/store"
)

// Engine combines per-project diary collections into derived views.
// All results are recomputed on every call and never cached.
type Engine struct {
	store store.Store
}

// NewEngine creates a new aggregation engine on top of the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// BuildCalendarAndStats lists every project of the user, fetches their
// diary collections concurrently, and derives calendar events, summary
// statistics and the recent-diaries preview in a single pass.
// The per-project fetches are joined before any aggregation happens, so a
// partial result is never observable; any fetch error fails the whole call.
func (e *Engine) BuildCalendarAndStats(ctx context.Context, userID uuid.UUID) (*model.CalendarData, error) {
	projects, err := e.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	// Fan out one fetch per project; results keep project order so the
	// aggregation below is deterministic.
	diariesByProject := make([][]*model.Diary, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range projects {
		g.Go(func() error {
			diaries, err := e.store.ListDiaries(gctx, userID, p.ID)
			if err != nil {
				return err
			}
			diariesByProject[i] = diaries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}

	now := time.Now()
	currentMonth := now.Month()
	currentYear := now.Year()

	data := &model.CalendarData{
		Events:   []model.CalendarEvent{},
		Projects: make([]model.ProjectRef, 0, len(projects)),
		Recent:   []model.CalendarEvent{},
	}
	data.Stats.ProjectCount = len(projects)

	for i, p := range projects {
		data.Projects = append(data.Projects, model.ProjectRef{ID: p.ID, Name: p.Name})
		for _, d := range diariesByProject[i] {
			created := d.CreatedAt.Local()
			data.Stats.DiaryCount++
			if d.HasTroubleshooting() {
				data.Stats.TroubleshootingCount++
			}
			if created.Month() == currentMonth && created.Year() == currentYear {
				data.Stats.ThisMonthDiaryCount++
				if d.HasTroubleshooting() {
					data.Stats.ThisMonthTroubleCount++
				}
			}
			data.Events = append(data.Events, model.CalendarEvent{
				DiaryID:     d.ID,
				Title:       eventTitle(d.Title),
				Date:        created.Format("2006-01-02"),
				Color:       model.EventColor,
				ProjectID:   p.ID,
				ProjectName: p.Name,
			})
		}
	}

	data.Recent = RecentEvents(data.Events, 3)
	data.Message = SummaryMessage(data.Stats)
	return data, nil
}

// eventTitle falls back to a placeholder for untitled diaries.
func eventTitle(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}

// RecentEvents returns the n most recent events by date, descending.
// Ties within a day keep fetch order (stable sort).
func RecentEvents(events []model.CalendarEvent, n int) []model.CalendarEvent {
	sorted := make([]model.CalendarEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// BuildFlatDiaryList returns the user's diaries as a flat list sorted by
// creation date descending. With an unfiltered ProjectFilter it fans out
// over every project and concatenates; otherwise only the named project's
// diaries are fetched.
func (e *Engine) BuildFlatDiaryList(ctx context.Context, userID uuid.UUID, filter *model.ProjectFilter) ([]model.DiaryEntry, error) {
	projects, err := e.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	names := make(map[uuid.UUID]string, len(projects))
	var targets []*model.Project
	for _, p := range projects {
		names[p.ID] = p.Name
		if filter.IsAll() || *filter.ID() == p.ID {
			targets = append(targets, p)
		}
	}
	if !filter.IsAll() && len(targets) == 0 {
		return nil, model.ErrProjectNotFound
	}

	diariesByProject := make([][]*model.Diary, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range targets {
		g.Go(func() error {
			diaries, err := e.store.ListDiaries(gctx, userID, p.ID)
			if err != nil {
				return err
			}
			diariesByProject[i] = diaries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}

	entries := []model.DiaryEntry{}
	for i, p := range targets {
		for _, d := range diariesByProject[i] {
			entries = append(entries, model.DiaryEntry{
				ID:          d.ID,
				ProjectID:   p.ID,
				ProjectName: names[p.ID],
				Title:       eventTitle(d.Title),
				Progress:    d.Progress,
				Tags:        d.Tags,
				CreatedAt:   d.CreatedAt,
				HasTrouble:  d.HasTroubleshooting(),
			})
		}
	}

	SortEntries(entries, true)
	return entries, nil
}

// SortEntries sorts entries by creation date, descending when desc is
// true. The sort is stable so same-day entries keep their fetch order.
func SortEntries(entries []model.DiaryEntry, desc bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		if desc {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// Filter returns the entries whose title, progress text or any tag
// contains the term as a case-insensitive substring. An empty term returns
// the input unchanged; order is always preserved.
func Filter(entries []model.DiaryEntry, term string) []model.DiaryEntry {
	if term == "" {
		return entries
	}
	needle := strings.ToLower(term)

	filtered := []model.DiaryEntry{}
	for _, e := range entries {
		if matches(e, needle) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// matches reports whether the entry matches a lower-cased search term.
func matches(e model.DiaryEntry, needle string) bool {
	if strings.Contains(strings.ToLower(e.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Progress), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// SummaryMessage builds the this-month retrospective line shown on the
// home page.
func SummaryMessage(stats model.SummaryStats) string {
	diaries := stats.ThisMonthDiaryCount
	troubles := stats.ThisMonthTroubleCount

	if diaries == 0 {
		return "🗓 No diaries yet this month. Start a new entry!"
	}
	if diaries <= 2 {
		return fmt.Sprintf("🌱 You wrote %d diaries this month. A steady start!", diaries)
	}
	if diaries <= 5 {
		if troubles > 0 {
			return fmt.Sprintf("🔥 You wrote %d diaries this month, with %d troubleshooting entries!", diaries, troubles)
		}
		return fmt.Sprintf("🔥 You wrote %d diaries this month. Great momentum!", diaries)
	}
	return fmt.Sprintf("🌟 %d diaries and %d troubleshooting entries this month. What a month! 👏", diaries, troubles)
}
