// Package pricing derives the representative price and guest rating of a
// search hit from its embedded rate offers. All arithmetic is decimal.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

// Select picks the cheapest displayed amount across every payment type of
// every rate. Ties keep the first minimum encountered. The per-night price is
// the chosen total divided by the number of daily prices of the rate that
// carried it, or the total itself when that rate lists none.
//
// A hit with no amount yields an empty PriceInfo. A zero minimum is treated as
// unusable (upstream uses it for unpriced placeholders) but its currency is
// still reported.
func Select(rates []domain.Rate) domain.PriceInfo {
	var (
		best     *decimal.Decimal
		currency string
		bestRate int
	)
	for i := range rates {
		for _, pt := range rates[i].PaymentOptions.PaymentTypes {
			amount, cur := displayed(pt)
			if amount == nil {
				continue
			}
			if best == nil || amount.LessThan(*best) {
				best = amount
				currency = cur
				bestRate = i
			}
		}
	}

	if best == nil {
		return domain.PriceInfo{}
	}
	if best.IsZero() {
		return domain.PriceInfo{Currency: currency}
	}

	total := *best
	perNight := total
	if n := len(rates[bestRate].DailyPrices); n > 0 {
		perNight = total.Div(decimal.NewFromInt(int64(n)))
	}
	return domain.PriceInfo{Total: &total, PerNight: &perNight, Currency: currency}
}

// displayed prefers the amount converted to the requested currency.
func displayed(pt domain.PaymentType) (*decimal.Decimal, string) {
	amount := pt.ShowAmount
	if amount == nil || amount.IsZero() {
		if pt.Amount != nil {
			amount = pt.Amount
		}
	}
	cur := pt.ShowCurrencyCode
	if cur == "" {
		cur = pt.CurrencyCode
	}
	return amount, cur
}

// Rating converts the average room quality score (0–10) of the rates into a
// 0–5 guest rating rounded to one decimal. It returns nil when no rate
// carries a quality score.
func Rating(rates []domain.Rate) *float64 {
	var (
		sum float64
		n   int
	)
	for _, r := range rates {
		if r.RgExt == nil || r.RgExt.Quality == nil {
			continue
		}
		sum += *r.RgExt.Quality
		n++
	}
	if n == 0 {
		return nil
	}
	v := math.Round(sum/float64(n)/2*10) / 10
	return &v
}

// Passes reports whether a per-night price satisfies the configured bounds.
// An unknown price never passes a configured bound.
func Passes(p domain.PriceInfo, f domain.Filters) bool {
	if !f.HasPrice() {
		return true
	}
	if p.PerNight == nil {
		return false
	}
	if f.MinPrice != nil && p.PerNight.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.PerNight.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
