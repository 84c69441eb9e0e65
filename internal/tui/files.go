package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"geoglobe/internal/geom"
	"geoglobe/internal/globe"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !geom.Supported(name) {
			continue
		}
		items = append(items, fileItem{
			title: name,
			desc:  strings.ToLower(filepath.Ext(name)),
			path:  filepath.Join(m.cwd, name),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in " + m.cwd
	}
}

// loadPath loads a dataset and hands it to the engine. The region filter,
// when configured, keeps only features whose centroid falls inside it.
func (m *Model) loadPath(p string) {
	d, err := geom.Load(p)
	if err != nil {
		m.log.Warn("load failed", zap.String("path", p), zap.Error(err))
		m.status = "load error: " + err.Error()
		return
	}
	fs := d.Features
	if m.hasRegion {
		fs = geom.FilterByCentroid(fs, m.region)
	}
	m.selPath = p
	diags := m.setFeatures(fs)
	m.status = fmt.Sprintf("loaded: %s  features=%d", filepath.Base(p), len(fs))
	if len(diags) > 0 {
		m.status += fmt.Sprintf("  skipped=%d", len(diags))
	}
	m.log.Info("dataset loaded",
		zap.String("path", p),
		zap.Int("features", len(fs)),
		zap.Int("skipped", len(diags)))
}

// setFeatures replaces the dataset on both the canvas and the engine.
func (m *Model) setFeatures(fs []*geojson.Feature) []error {
	m.canvas.setFeatures(fs)
	diags := m.engine.SetFeatures(fs)
	m.bound = geom.Bounds(fs)
	m.inspectPopup = ""
	if m.showAttrs {
		m.refreshAttrsFromCurrent()
	}
	return diags
}

// addFeature appends f to the dataset and selects it.
func (m *Model) addFeature(f *geojson.Feature) error {
	fs := append(append([]*geojson.Feature(nil), m.engine.Features()...), f)
	if diags := m.setFeatures(fs); len(diags) > 0 {
		return diags[len(diags)-1]
	}
	return m.selectFeature(len(fs) - 1)
}

// selectFeature selects feature i and keeps the attribute cursor on it.
func (m *Model) selectFeature(i int) error {
	err := m.engine.Select(i)
	sel := m.engine.Selection()
	if sel == globe.NoSelection {
		m.status = "selection cleared"
	} else {
		m.status = fmt.Sprintf("selected %d/%d: %s", sel+1, len(m.engine.Features()),
			geom.Name(m.engine.Features()[sel], fmt.Sprintf("feature %d", sel+1)))
		if m.showAttrs && sel < len(m.tbl.Rows()) {
			m.tbl.SetCursor(sel)
		}
	}
	if err != nil {
		m.status = "cannot centre: " + err.Error()
	}
	return err
}
