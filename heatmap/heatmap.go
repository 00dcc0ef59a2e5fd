// Package heatmap renders a project's diary activity as a GitHub-style
// yearly contribution graph in SVG.
package heatmap

import (
	"time"

	"github.com/stsysd/nisshi/model"
)

// DayCount holds the diary count for one day.
type DayCount struct {
	Date  time.Time
	Count int
}

// Options configures rendering parameters.
type Options struct {
	CellSize    int      // size of each day cell (px)
	CellPadding int      // padding between cells (px)
	Colors      []string // N CSS colors for levels 0..N-1
	FontSize    int      // font size for labels (px)
	FontFamily  string   // font family for labels
	Title       string   // optional title shown above the graph
}

// DefaultOptions returns the standard rendering options with the blue
// palette used across the app.
func DefaultOptions() *Options {
	return &Options{
		CellSize:    12,
		CellPadding: 2,
		FontSize:    10,
		FontFamily:  "sans-serif",
		Colors:      []string{"#f0f0f0", "#bfdbfe", "#93c5fd", "#60a5fa", "#3b82f6", "#1d4ed8"},
	}
}

// BuildDayCounts buckets diaries into per-day counts over the given
// range, one entry per day including zero days. Diaries outside the
// range are ignored. Days are local.
func BuildDayCounts(diaries []*model.Diary, dateRange *model.DateRange) []DayCount {
	from := dayOf(dateRange.From())
	to := dayOf(dateRange.To())
	if to.Before(from) {
		return nil
	}

	counts := map[string]int{}
	for _, d := range diaries {
		key := d.Day().Format("2006-01-02")
		counts[key]++
	}

	var out []DayCount
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		out = append(out, DayCount{Date: day, Count: counts[day.Format("2006-01-02")]})
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
