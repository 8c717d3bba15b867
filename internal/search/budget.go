package search

// Budget defaults.
const (
	DefaultBudgetBase    = 25
	DefaultBudgetCeiling = 200
)

// BudgetPolicy grants the enrichment budget of one page scan. Deeper pages
// must skip past every earlier accepted hit, so they get the base budget plus
// one call per skipped slot, capped at Ceiling (0 means uncapped).
type BudgetPolicy struct {
	Base    int
	Ceiling int
}

// For returns the budget for the given page (1-based) and page size.
func (p BudgetPolicy) For(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize < 0 {
		pageSize = 0
	}
	b := p.Base + (page-1)*pageSize
	if p.Ceiling > 0 && b > p.Ceiling {
		b = p.Ceiling
	}
	if b < 0 {
		b = 0
	}
	return b
}
