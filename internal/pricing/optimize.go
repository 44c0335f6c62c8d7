package pricing

import (
	"math"
	"slices"
)

// MinCostAtLeast finds the cheapest combination of bundles granting at
// least target containers. Regular bundles can be bought any number of
// times; each first-time x2 offer at most once.
func MinCostAtLeast(cat Catalog, target int, first FirstTimeState) Plan {
	if target <= 0 || len(cat.Packs) == 0 {
		return Plan{Currency: cat.Currency}
	}
	opts := expand(cat, first)

	// dp[c] is the min cost to reach c containers, where c == target stands
	// for "target or more", so overshooting bundles land on the last cell.
	dp := make([]int, target+1)
	counts := make([][]int, target+1)
	for c := range dp {
		dp[c] = math.MaxInt
	}
	dp[0] = 0
	counts[0] = make([]int, len(opts))

	step := func(c, i int) int {
		return min(c+opts[i].containers, target)
	}

	// One-shot offers are 0/1 items: each pass reads the previous table.
	for i, o := range opts {
		if !o.once || o.containers <= 0 {
			continue
		}
		prevDP, prevCounts := slices.Clone(dp), slices.Clone(counts)
		for c := 0; c <= target; c++ {
			if prevDP[c] == math.MaxInt {
				continue
			}
			nc := step(c, i)
			if cost := prevDP[c] + o.price; cost < dp[nc] {
				dp[nc] = cost
				counts[nc] = withOne(prevCounts[c], i)
			}
		}
	}

	// Regular bundles are unbounded: ascending c lets a cell reuse itself.
	for c := 0; c < target; c++ {
		if dp[c] == math.MaxInt {
			continue
		}
		for i, o := range opts {
			if o.once || o.containers <= 0 {
				continue
			}
			nc := step(c, i)
			if cost := dp[c] + o.price; cost < dp[nc] {
				dp[nc] = cost
				counts[nc] = withOne(counts[c], i)
			}
		}
	}

	if dp[target] == math.MaxInt {
		return Plan{Currency: cat.Currency}
	}
	return buildPlan(cat, opts, counts[target])
}

// MaxContainersUnderBudget computes the most containers purchasable with
// budgetCents, tax included.
func MaxContainersUnderBudget(cat Catalog, budgetCents int, first FirstTimeState) Plan {
	if budgetCents <= 0 || len(cat.Packs) == 0 {
		return Plan{Currency: cat.Currency}
	}
	opts := expand(cat, first)

	// If prices are pre-tax, reduce effective budget by tax to approximate pre-tax spend.
	budget := budgetCents
	if cat.TaxRate > 0 {
		budget = int(math.Floor(float64(budgetCents) / (1 + cat.TaxRate)))
	}
	// rounding tax on the subtotal can still overshoot by a cent
	for budget > 0 {
		if _, total := applyTax(budget, cat.TaxRate); total <= budgetCents {
			break
		}
		budget--
	}

	// dp[b] = max containers with spend at most b
	dp := make([]int, budget+1)
	counts := make([][]int, budget+1)
	empty := make([]int, len(opts))
	for b := range counts {
		counts[b] = empty
	}

	// 0/1 pass for one-shot offers: descending b never reads this pass's writes.
	for i, o := range opts {
		if !o.once || o.price <= 0 {
			continue
		}
		for b := budget; b >= o.price; b-- {
			if v := dp[b-o.price] + o.containers; v > dp[b] {
				dp[b] = v
				counts[b] = withOne(counts[b-o.price], i)
			}
		}
	}

	// unbounded pass for regular bundles
	for b := 0; b <= budget; b++ {
		for i, o := range opts {
			if o.once || o.price <= 0 || o.price > b {
				continue
			}
			if v := dp[b-o.price] + o.containers; v > dp[b] {
				dp[b] = v
				counts[b] = withOne(counts[b-o.price], i)
			}
		}
	}

	return buildPlan(cat, opts, counts[budget])
}

func withOne(base []int, i int) []int {
	out := slices.Clone(base)
	out[i]++
	return out
}
