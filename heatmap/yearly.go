package heatmap

import (
	"fmt"
	"html"
	"strings"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// RenderYearlySVG returns an SVG string with one cell per day, laid out
// in week columns starting on Sunday. data must be sorted ascending by
// date; an empty slice renders to an empty string.
func RenderYearlySVG(data []DayCount, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(data) == 0 {
		return ""
	}

	startDate := data[0].Date
	endDate := data[len(data)-1].Date

	countMap := make(map[string]int, len(data))
	for _, d := range data {
		countMap[d.Date.Format("2006-01-02")] = d.Count
	}

	// align the first column to Sunday
	firstSunday := startDate.AddDate(0, 0, -int(startDate.Weekday()))
	dayDiff := endDate.Sub(firstSunday).Hours() / 24
	weeks := int(dayDiff/7) + 1

	titleHeight := 0
	if opts.Title != "" {
		titleHeight = opts.FontSize + 8
	}
	width := weeks*(opts.CellSize+opts.CellPadding) + opts.CellPadding
	height := 7*(opts.CellSize+opts.CellPadding) + opts.CellPadding + opts.FontSize + 4 + titleHeight

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height))
	sb.WriteString(fmt.Sprintf(`  <style>.label{font-family:%s;font-size:%dpx;fill:#666}.title{font-family:%s;font-size:%dpx;fill:#333;font-weight:bold}</style>`+"\n",
		opts.FontFamily, opts.FontSize, opts.FontFamily, opts.FontSize))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" class="title">%s</text>`+"\n",
			opts.CellPadding, opts.FontSize, html.EscapeString(opts.Title)))
	}

	// month labels above the first week of each month
	lastMonth := -1
	monthLabelY := opts.FontSize + titleHeight
	for w := range weeks {
		x := opts.CellPadding + w*(opts.CellSize+opts.CellPadding)
		current := firstSunday.AddDate(0, 0, w*7)
		if current.Day() <= 7 && int(current.Month())-1 != lastMonth {
			sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" class="label">%s</text>`+"\n",
				x, monthLabelY, monthLabels[current.Month()-1]))
			lastMonth = int(current.Month()) - 1
		}
	}

	// auto-scale levels against the busiest day
	supCount := 5
	for _, d := range data {
		if d.Count+1 > supCount {
			supCount = d.Count + 1
		}
	}

	levels := len(opts.Colors)
	for w := range weeks {
		for i := range 7 {
			current := firstSunday.AddDate(0, 0, w*7+i)
			key := current.Format("2006-01-02")
			count, exists := countMap[key]
			if !exists {
				continue
			}
			level := cellLevel(count, supCount, levels)
			x := opts.CellPadding + w*(opts.CellSize+opts.CellPadding)
			y := opts.CellPadding + opts.FontSize + 4 + titleHeight + i*(opts.CellSize+opts.CellPadding)

			sb.WriteString(fmt.Sprintf(`  <rect x="%d" y="%d" width="%d" height="%d" fill="%s" data-date="%s" data-count="%d">`+"\n",
				x, y, opts.CellSize, opts.CellSize, opts.Colors[level], key, count))
			sb.WriteString(fmt.Sprintf(`    <title>%s: %d</title>`+"\n", key, count))
			sb.WriteString(`  </rect>` + "\n")
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// cellLevel maps a count onto a color level. Zero always maps to level
// 0; positive counts spread over levels 1..levels-1.
func cellLevel(count, supCount, levels int) int {
	if count == 0 {
		return 0
	}
	if supCount <= 1 {
		return 1
	}
	level := ((count-1)*(levels-2))/(supCount-1) + 1
	if level >= levels {
		level = levels - 1
	}
	if level < 1 {
		level = 1
	}
	return level
}
