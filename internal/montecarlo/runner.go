package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/wotsim/internal/gacha"
)

const instrumentationName = "github.com/xtding233/wotsim/internal/montecarlo"

var ErrNilState = errors.New("trial returned no state")

// TrialFunc runs the trial with the given index and returns its terminal state.
type TrialFunc func(ctx context.Context, trial int) (*State, error)

// RunOptions tunes a batch. The zero value uses every CPU, a random batch
// id, a discarding logger and the global otel providers.
type RunOptions struct {
	Workers        int
	BatchID        string
	Logger         *slog.Logger
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

type Option func(*RunOptions)

// WithWorkers bounds how many trials run at once; n <= 0 means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *RunOptions) { o.Workers = n }
}

// WithBatchID tags logs and spans of the batch.
func WithBatchID(id string) Option {
	return func(o *RunOptions) { o.BatchID = id }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *RunOptions) { o.Logger = l }
}

// WithMeterProvider records the trial counter and openings histogram on mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *RunOptions) { o.MeterProvider = mp }
}

// WithTracerProvider starts the batch span on tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *RunOptions) { o.TracerProvider = tp }
}

func newRunOptions(opts []Option) RunOptions {
	var o RunOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.BatchID == "" {
		o.BatchID = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	return o
}

type instruments struct {
	trials   metric.Int64Counter
	openings metric.Int64Histogram
}

func newInstruments(mp metric.MeterProvider) instruments {
	meter := mp.Meter(instrumentationName)
	trials, _ := meter.Int64Counter("montecarlo.trials",
		metric.WithDescription("Completed simulation trials"))
	openings, _ := meter.Int64Histogram("montecarlo.trial.openings",
		metric.WithDescription("Containers opened per completed trial"))
	return instruments{trials: trials, openings: openings}
}

func (in instruments) record(ctx context.Context, st *State) {
	if in.trials != nil {
		in.trials.Add(ctx, 1)
	}
	if in.openings != nil {
		in.openings.Record(ctx, int64(st.Openings()))
	}
}

// RunMany runs n independent trials on a bounded worker pool and returns
// exactly n states, where result i comes from trial i. The first failing
// trial cancels the rest of the batch and its error is returned with no
// partial results.
func RunMany(ctx context.Context, fn TrialFunc, n int, opts ...Option) ([]*State, error) {
	if n <= 0 {
		return []*State{}, nil
	}
	o := newRunOptions(opts)
	log := o.Logger.With("batch_id", o.BatchID)

	ctx, span := o.TracerProvider.Tracer(instrumentationName).Start(ctx, "montecarlo.RunMany")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.id", o.BatchID),
		attribute.Int("batch.trials", n),
		attribute.Int("batch.workers", o.Workers),
	)

	log.Debug("batch started", "trials", n, "workers", o.Workers)
	start := time.Now()
	in := newInstruments(o.MeterProvider)

	results := make([]*State, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	dispatched := 0
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := fn(gctx, i)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			if st == nil {
				return fmt.Errorf("trial %d: %w", i, ErrNilState)
			}
			results[i] = st
			in.record(ctx, st)
			return nil
		})
	}

	err := g.Wait()
	if err == nil && dispatched < n {
		// cancellation stopped dispatch before any running trial noticed it
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("batch failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	log.Debug("batch finished", "trials", n, "elapsed", time.Since(start))
	return results, nil
}

// RunBatch runs trials of stop against the simulator. Trial i draws from
// PCG stream (seed, i), so the same seed replays the same batch whatever
// the worker count.
func (s *Simulator) RunBatch(ctx context.Context, stop Predicate, trials int, seed uint64, opts ...Option) ([]*State, error) {
	if stop == nil {
		return nil, ErrNilPredicate
	}
	return RunMany(ctx, func(_ context.Context, i int) (*State, error) {
		return s.Run(stop, gacha.NewStreamRNG(seed, uint64(i)))
	}, trials, opts...)
}
