package pricing

import "math"

// Pack models a purchasable container bundle in the store.
type Pack struct {
	ID              string // SKU id, e.g., "bundle-25"
	Name            string // display name, e.g., "25 Containers"
	Containers      int    // base containers granted
	BonusContainers int    // extra containers granted on every purchase
	FirstTimeX2     bool   // if true, first purchase doubles Containers (not BonusContainers)
	PriceCents      int    // price in minor units (e.g., cents)
}

// Catalog is a regional bundle catalog and tax info.
type Catalog struct {
	Currency string // ISO code, e.g., "EUR"
	// If prices are pre-tax, TaxRate is applied on subtotal to compute total.
	// If your prices are tax-inclusive, set TaxRate=0 and pass the inclusive price as PriceCents.
	TaxRate float64 // e.g., 0.2 for 20%
	Packs   []Pack
}

// FirstTimeState describes per-pack first-time eligibility.
type FirstTimeState map[string]bool // packID -> true if first-time x2 is still available

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases       []Purchase `json:"purchases"`
	SubCents        int        `json:"sub_cents"` // subtotal before tax
	TaxCents        int        `json:"tax_cents"`
	TotalCents      int        `json:"total_cents"`
	TotalContainers int        `json:"total_containers"`
	Currency        string     `json:"currency"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	PackID         string `json:"pack_id"`
	Name           string `json:"name"`
	Qty            int    `json:"qty"`
	UnitPrice      int    `json:"unit_price"`      // cents
	UnitContainers int    `json:"unit_containers"` // per unit in this plan (x2/bonus applied)
	Subtotal       int    `json:"subtotal"`        // cents
}

// option is a pack as it can be bought right now: a first-time x2 purchase
// shows up as its own option next to the regular one.
type option struct {
	id, name   string
	containers int
	price      int
	once       bool // only purchasable a single time
}

func expand(cat Catalog, first FirstTimeState) []option {
	var opts []option
	for _, p := range cat.Packs {
		if p.FirstTimeX2 && first[p.ID] {
			opts = append(opts, option{
				id:         p.ID + "#x2",
				name:       p.Name + " (x2)",
				containers: p.Containers*2 + p.BonusContainers, // x2 applies to base Containers only
				price:      p.PriceCents,
				once:       true,
			})
		}
		opts = append(opts, option{
			id:         p.ID,
			name:       p.Name,
			containers: p.Containers + p.BonusContainers,
			price:      p.PriceCents,
		})
	}
	return opts
}

// applyTax computes tax and total given a subtotal and a tax rate.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}

func buildPlan(cat Catalog, opts []option, counts []int) Plan {
	plan := Plan{Currency: cat.Currency}
	for i, qty := range counts {
		if qty == 0 {
			continue
		}
		o := opts[i]
		sub := o.price * qty
		plan.Purchases = append(plan.Purchases, Purchase{
			PackID:         o.id,
			Name:           o.name,
			Qty:            qty,
			UnitPrice:      o.price,
			UnitContainers: o.containers,
			Subtotal:       sub,
		})
		plan.SubCents += sub
		plan.TotalContainers += o.containers * qty
	}
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, cat.TaxRate)
	return plan
}
