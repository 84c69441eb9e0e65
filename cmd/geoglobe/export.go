package main

import (
	"go.uber.org/zap"

	"geoglobe/internal/config"
	"geoglobe/internal/geom"
	"geoglobe/internal/globe"
	"geoglobe/internal/svgout"
)

// export loads the dataset, centres the requested feature without animating
// and writes the settled frame as SVG.
func export(cfg *config.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	d, err := geom.Load(cfg.Data.Path)
	if err != nil {
		return err
	}
	fs := d.Features
	if cfg.Data.Region != "" {
		b, err := geom.ParseBound(cfg.Data.Region)
		if err != nil {
			return err
		}
		fs = geom.FilterByCentroid(fs, b)
	}

	pc, err := cfg.Projection(cfg.Export.Width, cfg.Export.Height)
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions(log)
	if err != nil {
		return err
	}
	e, err := globe.New(pc, opts)
	if err != nil {
		return err
	}
	defer e.Dispose()

	e.SetFeatures(fs)
	if err := e.Select(cfg.Export.Select); err != nil {
		return err
	}
	e.Settle()

	projected, _ := e.ProjectFeatures()
	if err := svgout.WriteFile(cfg.Export.SVG, e.Projector(), projected, svgout.DefaultStyle()); err != nil {
		return err
	}
	log.Info("svg written",
		zap.String("path", cfg.Export.SVG),
		zap.Int("features", len(projected)),
		zap.Int("selected", e.Selection()))
	return nil
}
