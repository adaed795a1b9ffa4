package ui

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/g5becks/outline/internal/search"
)

// KindRow describes one registered file-kind key.
type KindRow struct {
	Key     string `json:"key"`
	Scanner string `json:"scanner"`
	Alias   string `json:"alias,omitempty"`
}

// RenderKinds lists registered file-kind keys.
func RenderKinds(w io.Writer, rows []KindRow) {
	writer := newTable(w)
	writer.AppendHeader(table.Row{"KEY", "SCANNER", "ALIAS OF"})

	for _, row := range rows {
		writer.AppendRow(table.Row{row.Key, row.Scanner, row.Alias})
	}

	writer.Render()
}

// RenderResults prints find results.
func RenderResults(w io.Writer, results []search.Result, showDocs bool) {
	writer := newTable(w)

	if showDocs {
		writer.AppendHeader(table.Row{"NAME", "KIND", "SCOPE", "LOCATION", "SCORE", "COMMENT"})
	} else {
		writer.AppendHeader(table.Row{"NAME", "KIND", "SCOPE", "LOCATION", "SCORE"})
	}

	for _, r := range results {
		location := r.Path + ":" + strconv.Itoa(r.Line)
		if showDocs {
			writer.AppendRow(table.Row{r.Name, r.Kind, r.Scope, location, r.Score, truncate(oneLine(r.Comment), maxCommentLength)})
			continue
		}
		writer.AppendRow(table.Row{r.Name, r.Kind, r.Scope, location, r.Score})
	}

	writer.Render()
}

// IndexStat summarizes one file of an index.
type IndexStat struct {
	Path     string `json:"path"`
	Scanner  string `json:"scanner"`
	Lines    int    `json:"lines"`
	Elements int    `json:"elements"`
	Warning  string `json:"warning,omitempty"`
}

// RenderStats prints per-file index statistics with a totals footer.
func RenderStats(w io.Writer, stats []IndexStat) {
	writer := newTable(w)
	writer.AppendHeader(table.Row{"PATH", "SCANNER", "LINES", "ELEMENTS", "WARNING"})

	lines, elements := 0, 0
	for _, stat := range stats {
		writer.AppendRow(table.Row{stat.Path, stat.Scanner, stat.Lines, stat.Elements, stat.Warning})
		lines += stat.Lines
		elements += stat.Elements
	}

	writer.AppendFooter(table.Row{"TOTAL", strconv.Itoa(len(stats)) + " file(s)", lines, elements, ""})
	writer.Render()
}

func newTable(w io.Writer) table.Writer {
	writer := table.NewWriter()
	writer.SetOutputMirror(w)
	writer.SetStyle(table.StyleRounded)
	return writer
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
