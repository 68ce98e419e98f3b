// Package workspace ties a .smx directory to its configuration and store
// and runs analyses for the CLI and the MCP server.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sociometrix/smx/internal/cache"
	"github.com/sociometrix/smx/internal/config"
	"github.com/sociometrix/smx/internal/graph"
	"github.com/sociometrix/smx/internal/metrics"
	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/store"
	"github.com/sociometrix/smx/internal/survey"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned when no .smx directory can be found.
var ErrNotInitialized = errors.New("smx not initialized: run 'smx init' first")

// Workspace is an opened .smx directory.
type Workspace struct {
	// Config is the merged and validated configuration.
	Config *config.Config

	// Dir is the absolute path of the .smx directory.
	Dir string

	store  *store.Store
	cache  *cache.Cache
	logger *zap.Logger
}

// Open locates the workspace and opens its store.
func Open(workDir, configPath string, logger *zap.Logger) (*Workspace, error) {
	dir, cfg, err := Locate(workDir, configPath)
	if err != nil {
		return nil, err
	}
	return OpenConfig(dir, cfg, logger)
}

// Locate finds the workspace directory and loads its configuration without
// opening the store. With configPath set the config file is read from there
// and the workspace directory is the file's directory; otherwise the .smx
// directory is searched for upward from workDir.
func Locate(workDir, configPath string) (string, *config.Config, error) {
	var dir string
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return "", nil, fmt.Errorf("resolving config path: %w", err)
		}
		configPath = abs
		dir = filepath.Dir(abs)
	} else {
		found, err := config.FindConfigDir(workDir)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return "", nil, ErrNotInitialized
			}
			return "", nil, err
		}
		dir = found
		configPath = filepath.Join(dir, config.ConfigFileName)
	}

	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return "", nil, err
	}
	return dir, cfg, nil
}

// Init creates .smx/config.yaml in workDir with default settings and opens
// the new workspace. An existing config file is left untouched.
func Init(workDir string, logger *zap.Logger) (*Workspace, bool, error) {
	dir, err := config.EnsureConfigDir(workDir)
	if err != nil {
		return nil, false, err
	}

	created := false
	configPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := config.SaveDefault(workDir); err == nil {
		created = true
	} else if !fileExists(configPath) {
		return nil, false, err
	}

	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return nil, false, err
	}

	ws, err := OpenConfig(dir, cfg, logger)
	if err != nil {
		return nil, false, err
	}
	return ws, created, nil
}

// OpenConfig opens the store and report cache of the workspace at dir
// using cfg.
func OpenConfig(dir string, cfg *config.Config, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	st, err := store.Open(store.Options{
		Backend: store.Backend(cfg.Storage.Backend),
		Path:    cfg.StoragePath(dir),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	rc, err := cache.Open(dir)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	logger.Debug("workspace opened",
		zap.String("dir", dir),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", st.Path()),
	)

	return &Workspace{
		Config: cfg,
		Dir:    dir,
		store:  st,
		cache:  rc,
		logger: logger,
	}, nil
}

// Close closes the report cache and the store.
func (w *Workspace) Close() error {
	cacheErr := w.cache.Close()
	if err := w.store.Close(); err != nil {
		return err
	}
	return cacheErr
}

// Store returns the underlying store.
func (w *Workspace) Store() *store.Store {
	return w.store
}

// Cache returns the report cache.
func (w *Workspace) Cache() *cache.Cache {
	return w.cache
}

// Logger returns the workspace logger.
func (w *Workspace) Logger() *zap.Logger {
	return w.logger
}

// ReportOptions derives assembler options from the configuration.
func (w *Workspace) ReportOptions() report.Options {
	a := w.Config.Analysis
	return report.Options{
		Metrics: metrics.Options{
			ChoiceFloor: a.Floor(),
		},
		Precision:     w.Config.Output.Digits(),
		MaxRosterSize: a.MaxRosterSize,
		Prestige:      a.PrestigeEnabled(),
		PageRank: metrics.PageRankConfig{
			Damping:       a.PrestigeDamping,
			MaxIterations: a.PrestigeIterations,
			Tolerance:     metrics.DefaultPageRankConfig().Tolerance,
		},
	}
}

// Import validates and stores the dataset at path as a new research.
func (w *Workspace) Import(ctx context.Context, path string) (survey.Research, error) {
	ds, err := survey.LoadDataset(path)
	if err != nil {
		return survey.Research{}, err
	}

	research, err := w.store.SaveDataset(ctx, ds)
	if err != nil {
		return survey.Research{}, err
	}

	w.logger.Info("research imported",
		zap.Int64("research_id", int64(research.ID)),
		zap.String("name", research.Name),
		zap.Int("participants", research.PersonCount),
		zap.Int("questions", research.QuestionCount),
		zap.Int("responses", len(ds.Responses)),
	)
	return research, nil
}

// List returns every stored research, newest first.
func (w *Workspace) List(ctx context.Context, runID string) (*report.ResearchListData, error) {
	research, err := w.store.ListResearch(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewResearchList(research, runID), nil
}

// Questions returns the shared question bank with its usage.
func (w *Workspace) Questions(ctx context.Context) ([]store.QuestionUsage, error) {
	return w.store.ListQuestions(ctx)
}

// Analyze returns the report of research id assembled with opts. A report
// cached under the same options is reused unless fresh is set; a newly
// assembled report is written back to the cache.
func (w *Workspace) Analyze(ctx context.Context, id survey.ResearchID, opts report.Options, fresh bool, runID string) (*report.AnalysisReportData, error) {
	start := time.Now()

	research, err := w.store.GetResearch(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := cache.Key(research, opts)
	if err != nil {
		return nil, err
	}

	if !fresh {
		cached, ok, err := w.cache.GetReport(ctx, id, key)
		if err != nil {
			w.logger.Warn("report cache read failed", zap.Int64("research_id", int64(id)), zap.Error(err))
		} else if ok {
			w.logger.Debug("report cache hit", zap.Int64("research_id", int64(id)), zap.String("key", key))
			return report.NewAnalysisReport(research, cached, runID), nil
		}
	}

	loaded, err := w.store.LoadResearch(ctx, id)
	if err != nil {
		return nil, err
	}

	r, err := report.NewAssembler(opts).Assemble(loaded.Roster, loaded.Responses, loaded.Questions)
	if err != nil {
		w.logger.Warn("analysis failed",
			zap.Int64("research_id", int64(id)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("research %d: %w", id, err)
	}

	if err := w.cache.PutReport(ctx, id, key, r); err != nil {
		w.logger.Warn("report cache write failed", zap.Int64("research_id", int64(id)), zap.Error(err))
	}

	w.logger.Info("research analyzed",
		zap.Int64("research_id", int64(id)),
		zap.Int("participants", loaded.Roster.Len()),
		zap.Int("responses", loaded.Responses.Len()),
		zap.Int("questions", len(loaded.Questions)),
		zap.Duration("duration", time.Since(start)),
	)
	return report.NewAnalysisReport(loaded.Research, r, runID), nil
}

// Matrices loads research id and builds its nomination matrices.
func (w *Workspace) Matrices(ctx context.Context, id survey.ResearchID, runID string) (*report.MatrixReportData, error) {
	loaded, err := w.store.LoadResearch(ctx, id)
	if err != nil {
		return nil, err
	}

	matrices, err := report.Matrices(loaded.Roster, loaded.Responses, loaded.Questions)
	if err != nil {
		return nil, fmt.Errorf("research %d: %w", id, err)
	}

	w.logger.Debug("matrices built",
		zap.Int64("research_id", int64(id)),
		zap.Int("questions", len(matrices)),
	)
	return report.NewMatrixReport(loaded.Research, matrices, runID), nil
}

// Sociogram lays out the nominations of research id. With q nil the
// aggregate graph is drawn with the aggregate star rule; otherwise only
// question q with the per-question rule.
func (w *Workspace) Sociogram(ctx context.Context, id survey.ResearchID, q *survey.QuestionID) (graph.Sociogram, survey.Research, error) {
	loaded, err := w.store.LoadResearch(ctx, id)
	if err != nil {
		return graph.Sociogram{}, survey.Research{}, err
	}

	var built *graph.Built
	rule := graph.StarsByThreshold
	if q == nil {
		built, err = graph.BuildAll(loaded.Roster, loaded.Responses)
	} else {
		known := false
		for _, rq := range loaded.Questions {
			if rq.QuestionID == *q {
				known = true
				break
			}
		}
		if !known {
			return graph.Sociogram{}, survey.Research{}, fmt.Errorf("question %d is not part of research %d", *q, id)
		}
		rule = graph.StarsByMaximum
		built, err = graph.BuildQuestion(loaded.Roster, loaded.Responses, *q)
	}
	if err != nil {
		return graph.Sociogram{}, survey.Research{}, fmt.Errorf("research %d: %w", id, err)
	}

	s := graph.NewSociogram(loaded.Roster, built.Adjacency, rule)
	w.logger.Debug("sociogram built",
		zap.Int64("research_id", int64(id)),
		zap.Int("nodes", len(s.Nodes)),
		zap.Int("edges", len(s.Edges)),
	)
	return s, loaded.Research, nil
}

// Delete removes research id and everything recorded for it.
func (w *Workspace) Delete(ctx context.Context, id survey.ResearchID) error {
	if err := w.store.DeleteResearch(ctx, id); err != nil {
		return err
	}
	if err := w.cache.Invalidate(ctx, id); err != nil {
		w.logger.Warn("report cache invalidation failed", zap.Int64("research_id", int64(id)), zap.Error(err))
	}
	w.logger.Info("research deleted", zap.Int64("research_id", int64(id)))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// History returns the newest version-control commits of a Dolt store.
func (w *Workspace) History(ctx context.Context, limit int) ([]store.LogEntry, error) {
	return w.store.History(ctx, limit)
}
