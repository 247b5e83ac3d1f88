package pricing

import (
	"math"
	"time"
)

type Tier string

const (
	TierHourly      Tier = "hourly"
	TierDaily       Tier = "daily"
	TierWeekly      Tier = "weekly"
	TierUnavailable Tier = "unavailable"
)

const (
	hoursPerDay  = 24
	daysPerWeek  = 7
	hoursPerWeek = hoursPerDay * daysPerWeek

	hourlyCeiling = 6 * time.Hour
	dailyCeiling  = 6 * hoursPerDay * time.Hour
)

// RateCard holds the optional price tiers of a product.
type RateCard struct {
	PricePerHour *float64 `json:"pricePerHour,omitempty"`
	PricePerDay  *float64 `json:"pricePerDay,omitempty"`
	PricePerWeek *float64 `json:"pricePerWeek,omitempty"`
}

func (c RateCard) HasAny() bool {
	return set(c.PricePerHour) || set(c.PricePerDay) || set(c.PricePerWeek)
}

// Rate is the outcome of rate selection. Price is expressed per unit of Tier.
type Rate struct {
	Tier  Tier    `json:"tier"`
	Price float64 `json:"price"`
}

func (r Rate) Available() bool {
	return r.Tier != TierUnavailable
}

// DailyEquivalent converts the rate to a per-day price.
func (r Rate) DailyEquivalent() float64 {
	switch r.Tier {
	case TierHourly:
		return r.Price * hoursPerDay
	case TierWeekly:
		return r.Price / daysPerWeek
	default:
		return r.Price
	}
}

// SelectRate picks the tier matching the duration and derives its price from
// whichever tiers the card defines.
func SelectRate(card RateCard, d time.Duration) Rate {
	if !card.HasAny() {
		return Rate{Tier: TierUnavailable}
	}

	switch {
	case d < hourlyCeiling:
		return Rate{Tier: TierHourly, Price: first(
			scaled(card.PricePerHour, 1),
			scaled(card.PricePerDay, 1.0/hoursPerDay),
			scaled(card.PricePerWeek, 1.0/hoursPerWeek),
		)}
	case d < dailyCeiling:
		return Rate{Tier: TierDaily, Price: first(
			scaled(card.PricePerDay, 1),
			scaled(card.PricePerHour, hoursPerDay),
			scaled(card.PricePerWeek, 1.0/daysPerWeek),
		)}
	default:
		return Rate{Tier: TierWeekly, Price: first(
			scaled(card.PricePerWeek, 1),
			scaled(card.PricePerDay, daysPerWeek),
			scaled(card.PricePerHour, hoursPerWeek),
		)}
	}
}

type BillingMode string

const (
	// BillingTier multiplies by the natural unit of the selected tier.
	BillingTier BillingMode = "tier"
	// BillingDay multiplies the per-day equivalent by the day count.
	BillingDay BillingMode = "day"
)

func (m BillingMode) Valid() bool {
	return m == BillingTier || m == BillingDay
}

// Usage is the billed duration of a window.
type Usage struct {
	TotalHours int     `json:"totalHours"`
	TotalDays  int     `json:"totalDays"`
	Units      float64 `json:"units"`
}

// Measure counts whole hours and days (rounded up) and the billable units for
// the rate under mode.
func Measure(rate Rate, w Window, mode BillingMode) Usage {
	d := w.Duration()
	u := Usage{
		TotalHours: ceilDiv(d, time.Hour),
		TotalDays:  ceilDiv(d, hoursPerDay*time.Hour),
	}

	if mode == BillingDay {
		u.Units = float64(u.TotalDays)
		return u
	}

	switch rate.Tier {
	case TierHourly:
		u.Units = float64(u.TotalHours)
	case TierDaily:
		u.Units = float64(u.TotalDays)
	case TierWeekly:
		u.Units = float64(u.TotalDays) / daysPerWeek
	}
	return u
}

// Subtotal is the pre-tax amount for the usage.
func Subtotal(rate Rate, u Usage, mode BillingMode) float64 {
	if !rate.Available() {
		return 0
	}
	if mode == BillingDay {
		return Round2(rate.DailyEquivalent() * u.Units)
	}
	return Round2(rate.Price * u.Units)
}

func ceilDiv(d, unit time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(unit)))
}

func set(p *float64) bool {
	return p != nil && *p > 0
}

func scaled(p *float64, factor float64) *float64 {
	if !set(p) {
		return nil
	}
	v := *p * factor
	return &v
}

func first(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
