package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/smallnest/medgraph/rag/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230"))

	routeColors = map[engine.Route]lipgloss.Color{
		engine.RouteBoth:       lipgloss.Color("28"),
		engine.RouteVectorOnly: lipgloss.Color("25"),
		engine.RouteGraphOnly:  lipgloss.Color("97"),
		engine.RouteNone:       lipgloss.Color("240"),
		engine.RouteError:      lipgloss.Color("160"),
	}
)

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render(s))
}

func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", labelStyle.Render(label+":"), value)
}

func routeBadge(r engine.Route) string {
	return badgeStyle.Background(routeColors[r]).Render(string(r))
}
