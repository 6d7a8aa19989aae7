// Package service orchestrates one batch run: read and reconcile the
// source files, replace both stores, verify the relational copy and
// announce the result.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/docstore"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/metrics"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/queue"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/reconcile"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/repository"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/source"
)

// Deps are the connections a run uses. The caller owns and closes them.
// A nil Docs skips the document load, a nil Locker runs unlocked and a
// nil Publisher skips the completion event.
type Deps struct {
	SQL       *sql.DB
	Dialect   database.Dialect
	Docs      docstore.Database
	Locker    Locker
	Publisher Publisher
}

// Options tunes a run.
type Options struct {
	Sources   config.Sources
	BatchSize int
	Progress  repository.ProgressFunc
}

// TableSummary is the outcome of one table or collection replace.
type TableSummary struct {
	Store      string `json:"store"`
	Table      string `json:"table"`
	Rows       int    `json:"rows"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunSummary is what Run reports back to the CLI and the reload endpoint.
type RunSummary struct {
	RunID      string                `json:"run_id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Locked     bool                  `json:"locked"`
	Tables     []TableSummary        `json:"tables"`
	DocCounts  map[string]int64      `json:"doc_counts,omitempty"`
	Report     model.IntegrityReport `json:"report"`
	Errors     []string              `json:"errors,omitempty"`
}

// Pipeline runs batch loads against a fixed set of connections.
type Pipeline struct {
	deps Deps
	opts Options
	now  func() time.Time
}

// NewPipeline returns a Pipeline. deps.SQL is required.
func NewPipeline(deps Deps, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = repository.DefaultBatchSize
	}
	return &Pipeline{deps: deps, opts: opts, now: time.Now}
}

// ReadDataset checks that every source file exists, reads all three and
// reconciles the catalog. Any failure returns no data.
func ReadDataset(src config.Sources) (model.Dataset, error) {
	if err := source.CheckInputs(src.All()...); err != nil {
		return model.Dataset{}, err
	}
	users, err := source.ReadUsers(src.UsersCSV)
	if err != nil {
		return model.Dataset{}, err
	}
	raw, err := source.ReadCatalog(src.ContentJSON)
	if err != nil {
		return model.Dataset{}, err
	}
	content, err := reconcile.Reconcile(raw)
	if err != nil {
		return model.Dataset{}, err
	}
	sessions, err := source.ReadSessions(src.SessionsCSV)
	if err != nil {
		return model.Dataset{}, err
	}
	return model.Dataset{Users: users, Content: content, Sessions: sessions}, nil
}

// Run performs one full batch. Input and connection failures abort before
// any store is touched. Per-table load failures do not stop the run: the
// summary is always returned, with the failures joined into err.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	sum := RunSummary{RunID: uuid.NewString(), StartedAt: p.now().UTC()}
	log := logging.With().Str("run_id", sum.RunID).Logger()

	ds, err := step(log, "read sources", func() (model.Dataset, error) {
		return ReadDataset(p.opts.Sources)
	})
	if err != nil {
		return p.finish(sum), err
	}
	log.Info().Int("users", len(ds.Users)).Int("content", len(ds.Content)).
		Int("sessions", len(ds.Sessions)).Msg("sources reconciled")

	release, err := p.lock(ctx, log, sum.RunID)
	if err != nil {
		return p.finish(sum), err
	}
	if release != nil {
		sum.Locked = true
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("release run lock failed")
			}
		}()
	}

	var loadErrs []error
	if err := p.loadRelational(ctx, log, ds, &sum); err != nil {
		loadErrs = append(loadErrs, err)
	}
	if p.deps.Docs != nil {
		if err := p.loadDocuments(ctx, log, ds, &sum); err != nil {
			loadErrs = append(loadErrs, err)
		}
	} else {
		log.Info().Str("step", "document load").Msg("skipped")
	}

	rep, err := step(log, "verify", func() (model.IntegrityReport, error) {
		return repository.NewIntegrityRepo(p.deps.SQL).Report(ctx)
	})
	if err != nil {
		loadErrs = append(loadErrs, err)
	} else {
		sum.Report = rep
		metrics.RecordOrphans(rep.OrphanUserRefs, rep.OrphanContentRefs)
		if !rep.Passed() {
			log.Warn().Int64("orphan_user_refs", rep.OrphanUserRefs).
				Int64("orphan_content_refs", rep.OrphanContentRefs).Msg("referential integrity check failed")
		}
	}

	for _, e := range loadErrs {
		sum.Errors = append(sum.Errors, e.Error())
	}
	sum = p.finish(sum)
	p.publish(ctx, log, sum)
	return sum, errors.Join(loadErrs...)
}

func (p *Pipeline) finish(sum RunSummary) RunSummary {
	sum.FinishedAt = p.now().UTC()
	return sum
}

// lock returns a nil release when the run proceeds unlocked.
func (p *Pipeline) lock(ctx context.Context, log zerolog.Logger, runID string) (func(context.Context) error, error) {
	if p.deps.Locker == nil {
		log.Warn().Str("step", "lock").Msg("no run lock configured; running unlocked")
		return nil, nil
	}
	release, err := p.deps.Locker.Acquire(ctx, runID)
	switch {
	case err == nil:
		log.Info().Str("step", "lock").Msg("acquired")
		return release, nil
	case errors.Is(err, ErrRunInProgress):
		log.Error().Str("step", "lock").Err(err).Msg("failed")
		return nil, err
	default:
		log.Warn().Str("step", "lock").Err(err).Msg("lock backend unavailable; running unlocked")
		return nil, nil
	}
}

func (p *Pipeline) loadRelational(ctx context.Context, log zerolog.Logger, ds model.Dataset, sum *RunSummary) error {
	log.Info().Str("step", "relational load").Msg("start")
	loader := repository.NewLoader(p.deps.SQL, p.deps.Dialect,
		repository.WithBatchSize(p.opts.BatchSize),
		repository.WithProgress(p.opts.Progress),
		repository.WithTableHook(func(t repository.TableResult) {
			metrics.RecordTableLoad(metrics.StoreRelational, t.Table, t.Rows, t.Duration, t.Err)
			ev := log.Info()
			if t.Err != nil {
				ev = log.Error().Err(t.Err)
			}
			ev.Str("step", "relational load").Str("table", t.Table).Int("rows", t.Rows).
				Int("batches", t.Batches).Dur("took", t.Duration).Msg("table done")
			sum.Tables = append(sum.Tables, summarize(metrics.StoreRelational, t.Table, t.Rows, t.Duration, t.Err))
		}),
	)
	_, err := loader.Load(ctx, ds)
	if err != nil {
		log.Error().Str("step", "relational load").Err(err).Msg("failed")
		return err
	}
	log.Info().Str("step", "relational load").Msg("ok")
	return nil
}

func (p *Pipeline) loadDocuments(ctx context.Context, log zerolog.Logger, ds model.Dataset, sum *RunSummary) error {
	log.Info().Str("step", "document load").Msg("start")
	loader := docstore.NewLoader(p.deps.Docs, func(c docstore.CollectionResult) {
		metrics.RecordTableLoad(metrics.StoreDocument, c.Collection, c.Docs, c.Duration, c.Err)
		ev := log.Info()
		if c.Err != nil {
			ev = log.Error().Err(c.Err)
		}
		ev.Str("step", "document load").Str("table", c.Collection).Int("rows", c.Docs).
			Int64("deleted", c.Deleted).Dur("took", c.Duration).Msg("collection done")
		sum.Tables = append(sum.Tables, summarize(metrics.StoreDocument, c.Collection, c.Docs, c.Duration, c.Err))
	})
	if _, err := loader.Load(ctx, ds); err != nil {
		log.Error().Str("step", "document load").Err(err).Msg("failed")
		return err
	}
	counts, err := docstore.Counts(ctx, p.deps.Docs)
	if err != nil {
		log.Warn().Str("step", "document load").Err(err).Msg("count documents failed")
	} else {
		sum.DocCounts = counts
	}
	log.Info().Str("step", "document load").Msg("ok")
	return nil
}

func (p *Pipeline) publish(ctx context.Context, log zerolog.Logger, sum RunSummary) {
	if p.deps.Publisher == nil {
		return
	}
	ev := queue.LoadCompletedEvent{
		RunID:             sum.RunID,
		StartedAt:         sum.StartedAt.Format(time.RFC3339),
		FinishedAt:        sum.FinishedAt.Format(time.RFC3339),
		Users:             sum.Report.Users,
		Content:           sum.Report.ContentTotal,
		Sessions:          sum.Report.Sessions,
		OrphanUserRefs:    sum.Report.OrphanUserRefs,
		OrphanContentRefs: sum.Report.OrphanContentRefs,
		Passed:            sum.Report.Passed() && len(sum.Errors) == 0,
		Errors:            sum.Errors,
	}
	if err := p.deps.Publisher.PublishLoadCompleted(ctx, ev); err != nil {
		log.Warn().Str("step", "publish").Err(err).Msg("load.completed event not sent")
		return
	}
	log.Info().Str("step", "publish").Msg("ok")
}

func summarize(store, table string, rows int, d time.Duration, err error) TableSummary {
	s := TableSummary{Store: store, Table: table, Rows: rows, DurationMS: d.Milliseconds()}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// step logs start and outcome of fn under name.
func step[T any](log zerolog.Logger, name string, fn func() (T, error)) (T, error) {
	log.Info().Str("step", name).Msg("start")
	v, err := fn()
	if err != nil {
		log.Error().Str("step", name).Err(err).Msg("failed")
		return v, fmt.Errorf("%s: %w", name, err)
	}
	log.Info().Str("step", name).Msg("ok")
	return v, nil
}
