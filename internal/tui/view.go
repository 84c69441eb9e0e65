package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"geoglobe/internal/geom"
	"geoglobe/internal/globe"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	contentWidth := max(10, m.width)
	mapWidth, mapHeight := m.mapSize(m.width, m.height)

	header := titleStyle.Render(" geoglobe ─ " + m.title() + " ")
	header = lipgloss.NewStyle().Width(contentWidth).Render(header)

	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showAttrs:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		if colW == 0 {
			colW = min(60, contentWidth-6)
		}
		maxW := min(mapWidth, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(mapHeight-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.pasteMode:
		m.ta.SetWidth(mapWidth)
		m.ta.SetHeight(min(mapHeight, 12))
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(m.ta.View())
	default:
		mapView = mapStyle.Width(mapWidth).Height(mapHeight).Render(strings.Join(m.canvas.view(), "\n"))
	}

	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		maxPopupW := max(20, min(48, contentWidth/2))
		box := boxStyle.MaxWidth(maxPopupW).Render(m.inspectPopup)
		popup = lipgloss.Place(contentWidth, lipgloss.Height(box), lipgloss.Left, lipgloss.Top, box)
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	status := dimStyle.Render(" " + m.status + " ")
	coords := ""
	if m.hovering && m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lon=%.5f lat=%.5f  ", m.hoverLon, m.hoverLat))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderState())
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, right),
		m.renderHelp())
	footer = lipgloss.NewStyle().Width(contentWidth).Render(footer)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, popup, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// title names the selected feature, or the dataset when nothing is selected.
func (m Model) title() string {
	fs := m.engine.Features()
	sel := m.engine.Selection()
	if sel != globe.NoSelection && sel < len(fs) {
		return selectedStyle.Render(geom.Name(fs[sel], fmt.Sprintf("feature %d", sel+1)))
	}
	if len(fs) == 0 {
		return "no data"
	}
	return fmt.Sprintf("%d features", len(fs))
}

func (m Model) renderState() string {
	r := m.engine.Rotation()
	s := fmt.Sprintf(" %s λ=%.1f φ=%.1f γ=%.1f scale=%.0f",
		m.engine.Config().Type, r.Lambda, r.Phi, r.Gamma, m.engine.Scale())
	if m.engine.Animating() {
		s += " ⟳"
	}
	if m.engine.Dragging() {
		s += " ✋"
	}
	return dimStyle.Render(s)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"drag/←→↑↓ rotate",
		"+/- zoom",
		"[/] select",
		"c clear",
		"m projection",
		"t/T tilt",
		"z zoom-on-select",
		"Tab files",
		"p paste",
		"a attrs",
		"i inspect",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
