package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"

	"github.com/xtding233/wotsim/internal/event"
	"github.com/xtding233/wotsim/internal/montecarlo"
	"github.com/xtding233/wotsim/internal/pricing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report is the outcome of one simulate run.
type Report struct {
	BatchID  string                  `json:"batch_id"`
	Event    string                  `json:"event"`
	Version  string                  `json:"version,omitempty"`
	Trials   int                     `json:"trials"`
	Seed     uint64                  `json:"seed"`
	Target   string                  `json:"target"`
	Metric   string                  `json:"metric"`
	Stats    montecarlo.Stats        `json:"stats"`
	Variants map[string]VariantStats `json:"variants"`
	Cost     *CostReport             `json:"cost,omitempty"`
	Budget   *BudgetReport           `json:"budget,omitempty"`
}

// VariantStats holds per-variant means over the batch.
type VariantStats struct {
	Opened             float64 `json:"opened"`
	Purchased          float64 `json:"purchased"`
	ReceivedVehicles   float64 `json:"received_vehicles"`
	ReceivedContainers float64 `json:"received_containers"`
}

// CostReport prices the purchased-container metric with the store catalog.
type CostReport struct {
	Mean pricing.Plan `json:"mean"`
	P95  pricing.Plan `json:"p95"`
}

// BudgetReport tells how far a fixed spend goes: the containers it buys and
// the share of trials that reached the target within that many purchases.
type BudgetReport struct {
	BudgetCents int          `json:"budget_cents"`
	Plan        pricing.Plan `json:"plan"`
	Share       float64      `json:"share"`
}

// SweepReport holds one row per target of a sweep.
type SweepReport struct {
	Event  string     `json:"event"`
	Metric string     `json:"metric"`
	Seed   uint64     `json:"seed"`
	Rows   []SweepRow `json:"rows"`
}

type SweepRow struct {
	Target string  `json:"target"`
	Trials int     `json:"trials"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}

func buildReport(batchID string, p event.Params, states []*montecarlo.State, budgetCents int) Report {
	r := Report{
		BatchID:  batchID,
		Event:    p.Event,
		Version:  p.Version,
		Trials:   len(states),
		Seed:     p.Seed,
		Target:   p.Target.String(),
		Metric:   p.Metric.String(),
		Stats:    montecarlo.Summarize(states, p.Metric.Metric()),
		Variants: make(map[string]VariantStats, len(p.Sim.Variants)),
	}
	for name := range p.Sim.Variants {
		r.Variants[name] = VariantStats{
			Opened:             montecarlo.Summarize(states, montecarlo.OpenedContainers(name)).Mean,
			Purchased:          montecarlo.Summarize(states, montecarlo.PurchasedContainers(name)).Mean,
			ReceivedVehicles:   montecarlo.Summarize(states, montecarlo.ReceivedVehicles(name)).Mean,
			ReceivedContainers: montecarlo.Summarize(states, montecarlo.ReceivedContainers(name)).Mean,
		}
	}
	// the store sells base containers only
	if p.Store == nil || p.Metric.Kind != event.MetricPurchased || p.Metric.Variant != p.Sim.Base || len(states) == 0 {
		return r
	}
	r.Cost = &CostReport{
		Mean: pricing.MinCostAtLeast(*p.Store, int(math.Ceil(r.Stats.Mean)), p.FirstTime),
		P95:  pricing.MinCostAtLeast(*p.Store, int(math.Ceil(r.Stats.P95)), p.FirstTime),
	}
	if budgetCents > 0 {
		plan := pricing.MaxContainersUnderBudget(*p.Store, budgetCents, p.FirstTime)
		covered := 0
		for _, x := range montecarlo.Samples(states, p.Metric.Metric()) {
			if x <= plan.TotalContainers {
				covered++
			}
		}
		r.Budget = &BudgetReport{
			BudgetCents: budgetCents,
			Plan:        plan,
			Share:       float64(covered) / float64(len(states)),
		}
	}
	return r
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "event\t%s\n", r.Event)
	fmt.Fprintf(tw, "batch\t%s\n", r.BatchID)
	fmt.Fprintf(tw, "trials\t%d (seed %d)\n", r.Trials, r.Seed)
	fmt.Fprintf(tw, "target\t%s\n", r.Target)
	fmt.Fprintf(tw, "metric\t%s\n", r.Metric)
	fmt.Fprintf(tw, "mean\t%.2f (stddev %.2f)\n", r.Stats.Mean, r.Stats.StdDev)
	fmt.Fprintf(tw, "min/max\t%d / %d\n", r.Stats.Min, r.Stats.Max)
	fmt.Fprintf(tw, "p50/p90/p95/p99\t%.1f / %.1f / %.1f / %.1f\n", r.Stats.P50, r.Stats.P90, r.Stats.P95, r.Stats.P99)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "variant\topened\tpurchased\tvehicles\treceived")
	names := make([]string, 0, len(r.Variants))
	for name := range r.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := r.Variants[name]
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n", name, v.Opened, v.Purchased, v.ReceivedVehicles, v.ReceivedContainers)
	}

	if r.Cost != nil {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "cost at mean\t%s\n", formatPlan(r.Cost.Mean))
		fmt.Fprintf(tw, "cost at p95\t%s\n", formatPlan(r.Cost.P95))
	}
	if b := r.Budget; b != nil {
		fmt.Fprintf(tw, "budget %s\t%s, enough in %.1f%% of trials\n", formatCents(b.BudgetCents), formatPlan(b.Plan), 100*b.Share)
	}
	return tw.Flush()
}

func writeSweepText(w io.Writer, sr SweepReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "event\t%s\n", sr.Event)
	fmt.Fprintf(tw, "metric\t%s (seed %d)\n", sr.Metric, sr.Seed)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "target\ttrials\tmean\tstddev\tp50\tp95")
	for _, row := range sr.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.1f\t%.1f\n", row.Target, row.Trials, row.Mean, row.StdDev, row.P50, row.P95)
	}
	return tw.Flush()
}

func formatCents(c int) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}

func formatPlan(p pricing.Plan) string {
	s := fmt.Sprintf("%s %s for %d containers", formatCents(p.TotalCents), p.Currency, p.TotalContainers)
	sort.Slice(p.Purchases, func(i, j int) bool { return p.Purchases[i].PackID < p.Purchases[j].PackID })
	for i, pu := range p.Purchases {
		sep := ", "
		if i == 0 {
			sep = " ("
		}
		s += fmt.Sprintf("%s%dx %s", sep, pu.Qty, pu.Name)
	}
	if len(p.Purchases) > 0 {
		s += ")"
	}
	return s
}
