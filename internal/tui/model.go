package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"geoglobe/internal/config"
	"geoglobe/internal/geom"
	"geoglobe/internal/globe"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

type Model struct {
	cfg *config.Config
	log *zap.Logger

	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	engine *globe.Engine
	loop   *tickLoop
	canvas *canvas

	// File explorer
	cwd     string
	l       list.Model
	selPath string

	// Data
	region    orb.Bound
	hasRegion bool
	bound     orb.Bound

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// attributes table
	showAttrs bool
	tbl       table.Model
}

// New builds the viewer from cfg. The engine starts on an 80x24 surface and
// is resized when the terminal reports its size.
func New(cfg *config.Config, log *zap.Logger) (Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		cfg:         cfg,
		log:         log,
		helpVisible: true,
		status:      "geoglobe ready",
		loop:        newTickLoop(cfg.Animation.FrameInterval),
	}
	if cfg.Data.Region != "" {
		b, err := geom.ParseBound(cfg.Data.Region)
		if err != nil {
			return Model{}, err
		}
		m.region, m.hasRegion = b, true
	}

	mapW, mapH := m.mapSize(80, 24)
	m.canvas = newCanvas(mapW, mapH)
	pc, err := cfg.Projection(mapW*2, mapH*4)
	if err != nil {
		return Model{}, err
	}
	opts, err := cfg.EngineOptions(log)
	if err != nil {
		return Model{}, err
	}
	opts.Loop = m.loop
	opts.Render = m.canvas.render
	m.engine, err = globe.New(pc, opts)
	if err != nil {
		return Model{}, err
	}

	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON, ...). Press Enter to add it; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()

	if p := cfg.Data.Path; p != "" {
		if fi, err := os.Stat(p); err == nil {
			if fi.IsDir() {
				m.cwd = p
				m.refreshDir()
			} else {
				m.loadPath(p)
			}
		}
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

// Engine exposes the view engine, mostly for tests.
func (m Model) Engine() *globe.Engine { return m.engine }

// mapSize returns the map area in cells for a w x h terminal.
func (m Model) mapSize(w, h int) (int, int) {
	contentHeight := max(4, h-headerHeight-footerHeight)
	contentWidth := max(10, w)
	mapW := contentWidth
	if m.showSidebar {
		mapW -= sidebarWidth + 1
	}
	return max(10, mapW), contentHeight
}

// mapOrigin is the top-left cell of the map area.
func (m Model) mapOrigin() (int, int) {
	if m.showSidebar {
		return sidebarWidth + 1, headerHeight
	}
	return 0, headerHeight
}

// relayout resizes the canvas and the engine surface to the current
// terminal. A configured scale is kept; otherwise the globe is refitted.
func (m *Model) relayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	mapW, mapH := m.mapSize(m.width, m.height)
	m.canvas.resize(mapW, mapH)
	cfg := m.engine.Config()
	cfg.Width, cfg.Height = mapW*2, mapH*4
	cfg.Translate.X, cfg.Translate.Y = float64(cfg.Width)/2, float64(cfg.Height)/2
	if m.cfg.View.Scale <= 0 {
		cfg.Scale = fitScale(mapW, mapH)
	}
	if _, err := m.engine.Configure(cfg); err != nil {
		m.status = "resize: " + err.Error()
	}
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, mapH-2)
	}
}
