// Package service is the core boundary shared by the CLI and the HTTP server:
// it loads uploads into a session's working dataset and answers chart,
// preview and statistics requests against it.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaramelBytes/datadeck/internal/analysis"
	"github.com/KaramelBytes/datadeck/internal/apperr"
	"github.com/KaramelBytes/datadeck/internal/dataset"
	"github.com/KaramelBytes/datadeck/internal/logger"
	"github.com/KaramelBytes/datadeck/internal/metrics"
	"github.com/KaramelBytes/datadeck/internal/utils"
	"github.com/KaramelBytes/datadeck/internal/workspace"
)

// DefaultMaxUploadBytes caps an upload at 16 MiB.
const DefaultMaxUploadBytes = 16 << 20

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	UploadDir      string
	MaxUploadBytes int64
	Preview        analysis.PreviewOptions
	Bins           int
	Delimiter      rune
	// Sheet selects a workbook sheet by name; empty means the active sheet.
	Sheet  string
	Logger *slog.Logger
}

// Service wires the loader, analysis and the working dataset store.
type Service struct {
	store *workspace.Store
	opt   Options
	log   *slog.Logger
}

// New returns a Service over store.
func New(store *workspace.Store, opt Options) *Service {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opt.Bins <= 0 {
		opt.Bins = analysis.DefaultBins
	}
	if opt.Logger == nil {
		opt.Logger = logger.Discard()
	}
	return &Service{store: store, opt: opt, log: opt.Logger}
}

// MaxUploadBytes reports the configured upload cap.
func (s *Service) MaxUploadBytes() int64 { return s.opt.MaxUploadBytes }

// UploadResult answers a successful upload.
type UploadResult struct {
	Success   bool                   `json:"success" yaml:"success"`
	DatasetID string                 `json:"dataset_id" yaml:"dataset_id"`
	Filename  string                 `json:"filename" yaml:"filename"`
	Stats     *analysis.Summary      `json:"stats" yaml:"stats"`
	Columns   []string               `json:"columns" yaml:"columns"`
	Preview   *analysis.PreviewTable `json:"preview" yaml:"preview"`
}

// ChartResult wraps a chart payload.
type ChartResult struct {
	ChartData *analysis.Payload `json:"chart_data" yaml:"chart_data"`
}

// DatasetInfo describes the working dataset of a session.
type DatasetInfo struct {
	DatasetID string            `json:"dataset_id" yaml:"dataset_id"`
	Filename  string            `json:"filename" yaml:"filename"`
	LoadedAt  time.Time         `json:"loaded_at" yaml:"loaded_at"`
	Columns   []string          `json:"columns" yaml:"columns"`
	Stats     *analysis.Summary `json:"stats" yaml:"stats"`
}

// Upload decodes content and, only when every step succeeds, publishes it
// as the session's working dataset. A failed upload leaves the previous
// dataset in place.
func (s *Service) Upload(ctx context.Context, session, filename string, content []byte) (res *UploadResult, err error) {
	var format dataset.Format
	rows := 0
	defer func() { metrics.RecordUpload(string(format), len(content), rows, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if int64(len(content)) > s.opt.MaxUploadBytes {
		return nil, apperr.New(apperr.CodePayloadTooLarge, "file exceeds the %d MiB limit", s.opt.MaxUploadBytes>>20)
	}
	format, err = dataset.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}

	path, cleanup, err := utils.WriteTempUpload(s.opt.UploadDir, filename, content)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "stage upload")
	}
	defer cleanup()

	tab, err := dataset.LoadFile(path, format, dataset.Options{Delimiter: s.opt.Delimiter, SheetName: s.opt.Sheet})
	if err != nil {
		s.log.Debug("upload rejected", "session", session, "filename", filename, "error", err)
		return nil, err
	}
	tab.Name = filename
	rows = tab.NumRows()

	types := analysis.Infer(tab)
	ds := workspace.NewDataset(filename, tab, types, s.store.Now())
	res = &UploadResult{
		Success:   true,
		DatasetID: ds.ID.String(),
		Filename:  filename,
		Stats:     analysis.Summarize(tab, types),
		Columns:   append([]string{}, tab.Columns...),
		Preview:   analysis.Preview(tab, s.opt.Preview),
	}
	s.store.Put(session, ds)
	metrics.SetWorkingDatasets(s.store.Len())
	s.log.Info("dataset loaded",
		"session", session,
		"dataset_id", res.DatasetID,
		"filename", filename,
		"format", string(format),
		"rows", rows,
		"columns", len(tab.Columns),
	)
	return res, nil
}

// GenerateChart builds a chart payload from the session's working dataset.
func (s *Service) GenerateChart(ctx context.Context, session string, req analysis.ChartRequest) (res *ChartResult, err error) {
	start := time.Now()
	kind := "invalid"
	if k, kerr := analysis.ParseKind(req.Kind); kerr == nil {
		kind = string(k)
	}
	defer func() { metrics.RecordChart(kind, time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := s.store.Get(session)
	if err != nil {
		return nil, err
	}
	p, err := analysis.Build(ds.Table, ds.Types, req, analysis.ChartOptions{Bins: s.opt.Bins})
	if err != nil {
		return nil, err
	}
	s.log.Debug("chart built", "session", session, "kind", kind, "x", p.XColumn, "y", p.YColumn)
	return &ChartResult{ChartData: p}, nil
}

// Preview samples the first limit rows of the working dataset. limit <= 0
// uses the configured default.
func (s *Service) Preview(ctx context.Context, session string, limit int) (*analysis.PreviewTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := s.store.Get(session)
	if err != nil {
		return nil, err
	}
	opt := s.opt.Preview
	if limit > 0 {
		opt.Limit = limit
	}
	return analysis.Preview(ds.Table, opt), nil
}

// Stats summarizes the working dataset.
func (s *Service) Stats(ctx context.Context, session string) (*DatasetInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := s.store.Get(session)
	if err != nil {
		return nil, err
	}
	return &DatasetInfo{
		DatasetID: ds.ID.String(),
		Filename:  ds.Filename,
		LoadedAt:  ds.LoadedAt,
		Columns:   append([]string{}, ds.Table.Columns...),
		Stats:     analysis.Summarize(ds.Table, ds.Types),
	}, nil
}

// Clear drops the session's working dataset. It reports whether one existed.
func (s *Service) Clear(session string) bool {
	ok := s.store.Drop(session)
	metrics.SetWorkingDatasets(s.store.Len())
	if ok {
		s.log.Info("dataset cleared", "session", session)
	}
	return ok
}
