package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xtding233/wotsim/internal/event"
	"github.com/xtding233/wotsim/internal/montecarlo"
)

func newSimulateCmd() *cobra.Command {
	var (
		trials   int
		workers  int
		seed     uint64
		maxIter  int
		target   string
		metric   string
		fallback string
		preowned map[string]int
		budget   int
		sweep    []string
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate <event>",
		Short: "Run a batch of trials for an event",
		Long: `Run a batch of independent trials for an event and summarize the chosen
metric. Flags override the values from the event file.

Targets:  all:<variant> | vehicles:<variant>:<n> | purchased:<variant>:<n> | opened:<variant>:<n>
Metrics:  purchased:<variant> | opened:<variant> | vehicles:<variant> | received:<variant>

--sweep runs one batch per target and prints the metric for each; a bare
number reuses the kind and variant of the previous target.`,
		Example: `  wotsim simulate pandora
  wotsim simulate pandora --target all:alpha --preowned alpha=2 --trials 50000
  wotsim simulate pandora --seed 42 --json
  wotsim simulate pandora --budget 10000
  wotsim simulate pandora --sweep purchased:proto:100,200,400 --metric opened:prime`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			jsonOut, _ := cmd.Flags().GetBool("json")
			log := newLogger(cmd)
			name := args[0]

			var o event.Overrides
			flags := cmd.Flags()
			if flags.Changed("trials") {
				o.Trials = &trials
			}
			if flags.Changed("workers") {
				o.Workers = &workers
			}
			if flags.Changed("seed") {
				o.Seed = &seed
			}
			if flags.Changed("max-iterations") {
				o.MaxIterations = &maxIter
			}
			if flags.Changed("target") {
				o.Target = &target
			}
			if flags.Changed("metric") {
				o.Metric = &metric
			}
			if flags.Changed("fallback") {
				o.Fallback = &fallback
			}
			o.PreOwned = preowned

			var targets []string
			if len(sweep) > 0 {
				if flags.Changed("target") {
					return fmt.Errorf("--sweep and --target are mutually exclusive")
				}
				var err error
				if targets, err = expandSweep(sweep); err != nil {
					return err
				}
			}

			loader := event.NewLoader(configDir)
			run := func(ctx context.Context) error {
				if len(targets) > 0 {
					sr, err := runSweep(ctx, log, loader, name, o, targets)
					if err != nil {
						return err
					}
					if jsonOut {
						return writeJSON(cmd.OutOrStdout(), sr)
					}
					return writeSweepText(cmd.OutOrStdout(), sr)
				}

				_, p, err := loader.Resolve(name, o)
				if err != nil {
					return err
				}
				r, err := simulate(ctx, log, p, budget)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), r)
				}
				return writeText(cmd.OutOrStdout(), r)
			}

			if !watch {
				return run(cmd.Context())
			}
			return watchAndRun(cmd.Context(), log, loader, name, interval, run)
		},
	}

	cmd.Flags().IntVar(&trials, "trials", event.DefaultTrials, "Number of trials")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent trials (0 = all CPUs)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a replayable batch (random when unset)")
	cmd.Flags().IntVar(&maxIter, "max-iterations", montecarlo.DefaultMaxIterations, "Fail a trial after this many openings")
	cmd.Flags().StringVar(&target, "target", "", "Stopping condition, e.g. all:prime")
	cmd.Flags().StringVar(&metric, "metric", "", "Per-trial statistic, e.g. purchased:proto")
	cmd.Flags().StringVar(&fallback, "fallback", "", "Variant granted instead of a vehicle from an exhausted pool")
	cmd.Flags().StringToIntVar(&preowned, "preowned", nil, "Vehicles already owned, e.g. proto=3,alpha=1")
	cmd.Flags().IntVar(&budget, "budget", 0, "Spend in minor currency units to price against the store, e.g. 10000")
	cmd.Flags().StringSliceVar(&sweep, "sweep", nil, "Targets to run one batch each, e.g. purchased:proto:100,200,400")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run whenever the event or default file changes")
	cmd.Flags().DurationVar(&interval, "watch-interval", time.Second, "Polling interval for --watch")

	return cmd
}

func simulate(ctx context.Context, log *slog.Logger, p event.Params, budgetCents int) (Report, error) {
	sim, err := montecarlo.NewSimulator(p.Sim)
	if err != nil {
		return Report{}, err
	}
	batchID := uuid.NewString()
	log.Info("simulating", "event", p.Event, "batch_id", batchID, "trials", p.Trials, "target", p.Target.String(), "seed", p.Seed)

	start := time.Now()
	states, err := sim.RunBatch(ctx, p.Target.Predicate(p.Sim), p.Trials, p.Seed,
		montecarlo.WithWorkers(p.Workers),
		montecarlo.WithBatchID(batchID),
		montecarlo.WithLogger(log),
	)
	if err != nil {
		return Report{}, fmt.Errorf("event %s: %w", p.Event, err)
	}
	log.Info("batch done", "batch_id", batchID, "elapsed", time.Since(start).Round(time.Millisecond))
	return buildReport(batchID, p, states, budgetCents), nil
}

// runSweep runs one batch per target. Every batch shares the seed of the
// first one, so neighbouring targets differ only in where trials stop.
func runSweep(ctx context.Context, log *slog.Logger, loader event.Resolver, name string, o event.Overrides, targets []string) (SweepReport, error) {
	var sr SweepReport
	for _, target := range targets {
		o.Target = &target
		_, p, err := loader.Resolve(name, o)
		if err != nil {
			return SweepReport{}, err
		}
		if o.Seed == nil {
			seed := p.Seed
			o.Seed = &seed
		}
		r, err := simulate(ctx, log, p, 0)
		if err != nil {
			return SweepReport{}, err
		}
		if sr.Event == "" {
			sr.Event, sr.Metric, sr.Seed = r.Event, r.Metric, r.Seed
		}
		sr.Rows = append(sr.Rows, SweepRow{
			Target: r.Target,
			Trials: r.Trials,
			Mean:   r.Stats.Mean,
			StdDev: r.Stats.StdDev,
			P50:    r.Stats.P50,
			P95:    r.Stats.P95,
		})
	}
	return sr, nil
}

// expandSweep turns "purchased:proto:100", "200" into full target specs.
func expandSweep(items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	prefix := ""
	for _, item := range items {
		item = strings.TrimSpace(item)
		if _, err := strconv.Atoi(item); err == nil {
			if prefix == "" {
				return nil, fmt.Errorf("sweep %q: a bare count needs a preceding <kind>:<variant>:<n> target", item)
			}
			item = prefix + item
		}
		t, err := event.ParseTarget(item)
		if err != nil {
			return nil, err
		}
		if t.Kind != event.TargetAll {
			prefix = t.Kind + ":" + t.Variant + ":"
		}
		out = append(out, t.String())
	}
	return out, nil
}

func watchAndRun(ctx context.Context, log *slog.Logger, loader *event.Loader, name string, interval time.Duration, run func(context.Context) error) error {
	paths := []string{loader.Paths().DefaultPath(), loader.Paths().EventPath(name)}
	changed := make(chan string, 1)
	w := event.NewFileWatcher(paths, interval, func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	go w.Run(ctx)

	for {
		if err := run(ctx); err != nil {
			log.Error("simulation failed", "event", name, "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case path := <-changed:
			log.Info("config changed", "path", path)
			loader.Invalidate()
		}
	}
}
