package ui

import (
	"github.com/fatih/color"

	"github.com/g5becks/outline/internal/element"
)

type styles struct {
	green   *color.Color
	red     *color.Color
	yellow  *color.Color
	cyan    *color.Color
	magenta *color.Color
	blue    *color.Color
	dim     *color.Color
	bold    *color.Color
}

func newStyles(noColor bool) styles {
	s := styles{
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		yellow:  color.New(color.FgYellow),
		cyan:    color.New(color.FgCyan),
		magenta: color.New(color.FgMagenta),
		blue:    color.New(color.FgBlue),
		dim:     color.New(color.Faint),
		bold:    color.New(color.Bold),
	}

	if noColor {
		for _, c := range []*color.Color{s.green, s.red, s.yellow, s.cyan, s.magenta, s.blue, s.dim, s.bold} {
			c.DisableColor()
		}
	}

	return s
}

func (s styles) kind(k element.Kind) *color.Color {
	switch k {
	case element.KindNamespace:
		return s.magenta
	case element.KindClass, element.KindInterface, element.KindEnum:
		return s.cyan
	case element.KindConstructor, element.KindMethod, element.KindFunction:
		return s.green
	case element.KindProperty, element.KindField:
		return s.yellow
	case element.KindModule:
		return s.blue
	default:
		return s.dim
	}
}
