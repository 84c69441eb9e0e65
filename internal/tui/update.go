package tui

import (
	"fmt"
	"math"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/geo/r2"

	"geoglobe/internal/geom"
	"geoglobe/internal/globe"
)

const (
	zoomStep  = 1.2
	// zoom is kept within [minZoom, maxZoom] times the fitted globe
	minZoom   = 0.1
	maxZoom   = 1000.0
	nudgeStep = 10.0
	tiltStep  = 5.0
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	nm := next.(Model)
	return nm, tea.Batch(cmd, nm.loop.cmd())
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.engine.Frame(msg.gen)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		if m.showAttrs {
			switch msg.String() {
			case "up", "down", "pgup", "pgdown":
				var cmd tea.Cmd
				m.tbl, cmd = m.tbl.Update(msg)
				_ = m.selectFeature(m.tbl.Cursor())
				return m, cmd
			}
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.engine.Dispose()
			return m, tea.Quit
		case "+", "=":
			m.zoom(zoomStep)
		case "-", "_":
			m.zoom(1 / zoomStep)
		case "]", "n":
			m.step(1)
		case "[", "N":
			m.step(-1)
		case "home":
			_ = m.selectFeature(0)
		case "end":
			_ = m.selectFeature(len(m.engine.Features()) - 1)
		case "c", "esc":
			_ = m.selectFeature(globe.NoSelection)
		case "s":
			m.engine.Settle()
		case "m":
			t := globe.Mercator
			if m.engine.Config().Type == globe.Mercator {
				t = globe.Orthographic
			}
			if err := m.engine.SetProjectionType(t); err != nil {
				m.status = "projection: " + err.Error()
			} else {
				m.status = "projection: " + t.String()
			}
		case "t":
			m.tilt(tiltStep)
		case "T":
			m.tilt(-tiltStep)
		case "z":
			m.engine.SetAnimateZoom(!m.engine.AnimateZoom())
			m.status = fmt.Sprintf("zoom on select: %v", m.engine.AnimateZoom())
		case "Z":
			if err := m.engine.SetZoomLevel(m.engine.Scale()); err != nil {
				m.status = "zoom level: " + err.Error()
			} else {
				m.status = fmt.Sprintf("zoom level: %.1f", m.engine.ZoomLevel())
			}
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
			}
			m.relayout()
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			m.inspect()
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		case "up":
			m.engine.Nudge(0, -nudgeStep)
		case "down":
			m.engine.Nudge(0, nudgeStep)
		case "left":
			m.engine.Nudge(-nudgeStep, 0)
		case "right":
			m.engine.Nudge(nudgeStep, 0)
		}
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		f, err := geom.ParseWKTFeature(w, fmt.Sprintf("pasted %d", len(m.engine.Features())+1))
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		m.pasteMode = false
		m.ta.Blur()
		if err := m.addFeature(f); err != nil {
			m.status = "wkt error: " + err.Error()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// updateMouse maps terminal mouse events onto the engine surface. Leaving
// the map area while dragging detaches the drag.
func (m *Model) updateMouse(msg tea.MouseMsg) {
	mapW, mapH := m.mapSize(m.width, m.height)
	ox, oy := m.mapOrigin()
	cx, cy := msg.X-ox, msg.Y-oy
	inside := cx >= 0 && cx < mapW && cy >= 0 && cy < mapH
	if !inside {
		m.hovering, m.hoverHasGeo = false, false
		if m.engine.Dragging() {
			m.engine.Detach()
		}
		return
	}
	x, y := cellCenter(cx, cy)
	m.hovering = true
	m.hoverLon, m.hoverLat, m.hoverHasGeo = m.engine.Projector().Invert(r2.Point{X: x, Y: y})

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.zoom(zoomStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.zoom(1 / zoomStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.engine.PointerDown(x, y)
	case msg.Action == tea.MouseActionMotion:
		m.engine.PointerMove(x, y)
	case msg.Action == tea.MouseActionRelease:
		m.engine.PointerUp()
	}
}

func (m *Model) zoom(f float64) {
	mapW, mapH := m.mapSize(m.width, m.height)
	fit := fitScale(mapW, mapH)
	s := math.Max(minZoom*fit, math.Min(maxZoom*fit, m.engine.Scale()*f))
	if s == m.engine.Scale() {
		m.status = fmt.Sprintf("scale: %.1f (limit)", s)
		return
	}
	if err := m.engine.SetScale(s); err != nil {
		m.status = "zoom: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("scale: %.1f", m.engine.Scale())
}

func (m *Model) tilt(d float64) {
	if err := m.engine.SetTilt(m.engine.Tilt() + d); err != nil {
		m.status = "tilt: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("tilt: %.0f°", m.engine.Tilt())
}

// step moves the selection by d, wrapping around the dataset.
func (m *Model) step(d int) {
	n := len(m.engine.Features())
	if n == 0 {
		m.status = "no features"
		return
	}
	i := m.engine.Selection()
	if i == globe.NoSelection {
		if d > 0 {
			i = -1
		} else {
			i = 0
		}
	}
	_ = m.selectFeature(((i+d)%n + n) % n)
}

// inspect fills the popup with the selected feature's details.
func (m *Model) inspect() {
	sel := m.engine.Selection()
	if sel == globe.NoSelection {
		m.inspectPopup = "no feature selected"
		m.status = m.inspectPopup
		return
	}
	f := m.engine.Features()[sel]
	meta := []string{
		fmt.Sprintf("name: %s", geom.Name(f, fmt.Sprintf("feature %d", sel+1))),
		fmt.Sprintf("path: %s", m.selPath),
	}
	if f.Geometry != nil {
		b := f.Geometry.Bound()
		meta = append(meta,
			fmt.Sprintf("type: %s", f.Geometry.GeoJSONType()),
			fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()))
	}
	if lon, lat, err := globe.Centroid(f); err == nil {
		meta = append(meta, fmt.Sprintf("centroid: lon=%.6f lat=%.6f", lon, lat))
	}
	r := m.engine.Rotation()
	meta = append(meta, fmt.Sprintf("rotation: [%.2f, %.2f, %.2f]", r.Lambda, r.Phi, r.Gamma))
	m.inspectPopup = strings.Join(meta, "\n")
	m.status = "inspect popup"
}
