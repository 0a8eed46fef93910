// Package service runs the pubinfo transformation: it assembles the
// legislators, bills and vote documents from the extract tables and hands
// them to the configured stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pubinfo/internal/adapters/repository"
	"github.com/okian/pubinfo/internal/adapters/table"
	"github.com/okian/pubinfo/internal/config"
	"github.com/okian/pubinfo/internal/domain/bill"
	"github.com/okian/pubinfo/internal/domain/legislator"
	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/internal/domain/record"
	"github.com/okian/pubinfo/internal/domain/vote"
	"github.com/okian/pubinfo/pkg/logger"
	"github.com/okian/pubinfo/pkg/metrics"
)

// Pipeline stages, used as metric labels.
const (
	stageLegislators = "legislators"
	stageBills       = "bills"
	stageVotes       = "votes"
)

// Summary reports what a successful run produced.
type Summary struct {
	RunID            string
	Legislators      int
	DuplicateAuthors int
	Bills            int
	Authors          int
	Votes            int
	Duration         time.Duration
}

// Service runs the transformation once per call to Run.
type Service struct {
	cfg    config.Config
	source model.RowSource
	store  repository.Store
	logger logger.Logger
	runID  string
	now    func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource replaces the table reader built from the config.
func WithSource(src model.RowSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStore replaces the stores built from the config. The caller keeps
// ownership and closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithClock sets the time source used for the manifest and durations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service for cfg.
func New(cfg config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg,
		runID: uuid.NewString(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.source == nil {
		s.source = table.NewReader(cfg.InputDir,
			table.WithFiles(cfg.Tables()),
			table.WithMaxLineBytes(cfg.MaxLineBytes),
		)
	}
	return s
}

// RunID returns the id stamped on this service's output.
func (s *Service) RunID() string { return s.runID }

// Run reads every table, assembles the documents and writes them. Any error
// aborts the run; documents already written are left in place.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	start := s.now()
	log := s.logger.With(logger.String("run_id", s.runID))

	sum, err := s.run(ctx, log)
	elapsed := s.now().Sub(start)
	if err != nil {
		kind := ErrorKind(err)
		metrics.RecordRunFailure(kind, elapsed.Seconds())
		log.Error(ctx, "run failed", logger.String("kind", kind), logger.Error(err))
	} else {
		sum.Duration = elapsed
		metrics.RecordRunSuccess(elapsed.Seconds(), s.now().Unix())
		log.Info(ctx, "run complete",
			logger.Int("legislators", sum.Legislators),
			logger.Int("bills", sum.Bills),
			logger.Int("authors", sum.Authors),
			logger.Int("votes", sum.Votes),
			logger.String("duration", elapsed.String()),
		)
	}

	if s.cfg.MetricsFile != "" {
		if werr := metrics.WriteTextfile(s.cfg.MetricsFile); werr != nil {
			log.Warn(ctx, "metrics textfile not written", logger.Error(werr))
		}
	}
	return sum, err
}

func (s *Service) run(ctx context.Context, log logger.Logger) (*Summary, error) {
	loc, err := s.cfg.Location()
	if err != nil {
		return nil, err
	}

	store := s.store
	if store == nil {
		store, err = s.openStore(ctx, log)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				log.Warn(ctx, "closing store", logger.Error(cerr))
			}
		}()
	}

	log.Info(ctx, "run started", logger.String("input_dir", s.cfg.InputDir), logger.String("output_dir", s.cfg.OutputDir))
	sum := &Summary{RunID: s.runID}

	var legislators *legislator.Result
	err = s.stage(stageLegislators, func() error {
		var err error
		if legislators, err = legislator.Assemble(ctx, s.source); err != nil {
			return err
		}
		return store.PutLegislators(ctx, legislators.Roster)
	})
	if err != nil {
		return nil, fmt.Errorf("legislators: %w", err)
	}
	sum.Legislators = legislators.Roster.Len()
	sum.DuplicateAuthors = legislators.Duplicates
	metrics.UpdateAssembled(stageLegislators, sum.Legislators)
	if legislators.Duplicates > 0 {
		log.Warn(ctx, "duplicate author names in legislators table", logger.Int("duplicates", legislators.Duplicates))
	}
	log.Info(ctx, "legislators written", logger.Int("count", sum.Legislators))

	err = s.stage(stageBills, func() error {
		bills, err := bill.Assemble(ctx, s.source)
		if err != nil {
			return err
		}
		sum.Bills = bills.Len()
		return store.PutBills(ctx, bills)
	})
	if err != nil {
		return nil, fmt.Errorf("bills: %w", err)
	}
	metrics.UpdateAssembled(stageBills, sum.Bills)
	log.Info(ctx, "bills written", logger.Int("count", sum.Bills))

	err = s.stage(stageVotes, func() error {
		histories, err := vote.Assemble(ctx, s.source, slices.Clone(legislators.Authors), vote.WithLocation(loc))
		if err != nil {
			return err
		}
		for pair := histories.Oldest(); pair != nil; pair = pair.Next() {
			if err := store.PutVotes(ctx, pair.Key, pair.Value); err != nil {
				return err
			}
			sum.Authors++
			for v := pair.Value.Oldest(); v != nil; v = v.Next() {
				sum.Votes += len(v.Value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("votes: %w", err)
	}
	metrics.UpdateAssembled(stageVotes, sum.Votes)
	log.Info(ctx, "vote histories written", logger.Int("authors", sum.Authors), logger.Int("votes", sum.Votes))

	manifest := model.Manifest{
		RunID:       s.runID,
		GeneratedAt: s.now().UTC(),
		Legislators: sum.Legislators,
		Bills:       sum.Bills,
		Authors:     sum.Authors,
		Votes:       sum.Votes,
	}
	if err := store.PutManifest(ctx, manifest); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return sum, nil
}

func (s *Service) stage(name string, fn func() error) error {
	start := s.now()
	err := fn()
	metrics.RecordStageDuration(name, s.now().Sub(start).Seconds())
	return err
}

func (s *Service) openStore(ctx context.Context, log logger.Logger) (repository.Store, error) {
	files, err := repository.NewFileStore(ctx, repository.Layout{
		LegislatorsPath: s.cfg.LegislatorsPath(),
		BillsPath:       s.cfg.BillsPath(),
		ManifestPath:    s.cfg.ManifestPath(),
		VotesDir:        s.cfg.VotesPath(),
	})
	if err != nil {
		return nil, err
	}
	if s.cfg.PostgresDSN == "" {
		return files, nil
	}

	pg, err := repository.NewPostgresStore(ctx, s.cfg.PostgresDSN, s.runID)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "mirroring documents to postgres")
	return repository.NewMultiStore(files, pg), nil
}

// ErrorKind classifies a run error for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, config.ErrInvalidConfig):
		return "config"
	case errors.Is(err, model.ErrMissingKey):
		return "missing_key"
	case errors.Is(err, record.ErrMalformedField),
		errors.Is(err, record.ErrNullField),
		errors.Is(err, record.ErrFieldRange):
		return "malformed_field"
	case errors.Is(err, repository.ErrInvalidKey), errors.Is(err, repository.ErrWrite):
		return "write"
	default:
		return "io"
	}
}
