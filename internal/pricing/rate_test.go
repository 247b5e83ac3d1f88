package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestSelectRate_Hourly(t *testing.T) {
	card := RateCard{PricePerHour: ptr(50), PricePerDay: ptr(900), PricePerWeek: ptr(5000)}

	for _, d := range []time.Duration{time.Minute, time.Hour, 5*time.Hour + 59*time.Minute} {
		r := SelectRate(card, d)
		assert.Equal(t, TierHourly, r.Tier, d.String())
		assert.Equal(t, 50.0, r.Price, d.String())
	}
}

func TestSelectRate_Daily(t *testing.T) {
	card := RateCard{PricePerHour: ptr(50), PricePerDay: ptr(900), PricePerWeek: ptr(5000)}

	for _, d := range []time.Duration{6 * time.Hour, 24 * time.Hour, 5 * 24 * time.Hour, 6*24*time.Hour - time.Second} {
		r := SelectRate(card, d)
		assert.Equal(t, TierDaily, r.Tier, d.String())
		assert.Equal(t, 900.0, r.Price, d.String())
	}
}

func TestSelectRate_Weekly(t *testing.T) {
	card := RateCard{PricePerHour: ptr(50), PricePerDay: ptr(900), PricePerWeek: ptr(5000)}

	for _, d := range []time.Duration{6 * 24 * time.Hour, 7 * 24 * time.Hour, 30 * 24 * time.Hour} {
		r := SelectRate(card, d)
		assert.Equal(t, TierWeekly, r.Tier, d.String())
		assert.Equal(t, 5000.0, r.Price, d.String())
	}
}

func TestSelectRate_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		card RateCard
		d    time.Duration
		want Rate
	}{
		{"hourly from daily", RateCard{PricePerDay: ptr(240)}, 2 * time.Hour, Rate{TierHourly, 10}},
		{"hourly from weekly", RateCard{PricePerWeek: ptr(1680)}, 2 * time.Hour, Rate{TierHourly, 10}},
		{"daily from hourly", RateCard{PricePerHour: ptr(10)}, 48 * time.Hour, Rate{TierDaily, 240}},
		{"daily from weekly", RateCard{PricePerWeek: ptr(700)}, 48 * time.Hour, Rate{TierDaily, 100}},
		{"weekly from daily", RateCard{PricePerDay: ptr(100)}, 8 * 24 * time.Hour, Rate{TierWeekly, 700}},
		{"weekly from hourly", RateCard{PricePerHour: ptr(10)}, 8 * 24 * time.Hour, Rate{TierWeekly, 1680}},
		{"daily prefers day over week", RateCard{PricePerDay: ptr(120), PricePerWeek: ptr(700)}, 48 * time.Hour, Rate{TierDaily, 120}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectRate(tt.card, tt.d)
			assert.Equal(t, tt.want.Tier, got.Tier)
			assert.InDelta(t, tt.want.Price, got.Price, 1e-9)
		})
	}
}

func TestSelectRate_NoTier(t *testing.T) {
	assert.Equal(t, TierUnavailable, SelectRate(RateCard{}, time.Hour).Tier)
	assert.Equal(t, TierUnavailable, SelectRate(RateCard{PricePerDay: ptr(0)}, 48*time.Hour).Tier)
}

func TestMeasure(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(25*time.Hour + 30*time.Minute)}

	u := Measure(Rate{Tier: TierDaily, Price: 100}, w, BillingTier)
	assert.Equal(t, 26, u.TotalHours)
	assert.Equal(t, 2, u.TotalDays)
	assert.Equal(t, 2.0, u.Units)

	u = Measure(Rate{Tier: TierHourly, Price: 10}, Window{Start: start, End: start.Add(90 * time.Minute)}, BillingTier)
	assert.Equal(t, 2.0, u.Units)

	u = Measure(Rate{Tier: TierWeekly, Price: 700}, Window{Start: start, End: start.AddDate(0, 0, 14)}, BillingTier)
	assert.Equal(t, 2.0, u.Units)

	u = Measure(Rate{Tier: TierHourly, Price: 10}, Window{Start: start, End: start.Add(3 * time.Hour)}, BillingDay)
	assert.Equal(t, 1.0, u.Units)
}

func TestSubtotal_DayBillingUsesDailyEquivalent(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(3 * time.Hour)}
	rate := SelectRate(RateCard{PricePerHour: ptr(50)}, w.Duration())

	sub := Subtotal(rate, Measure(rate, w, BillingDay), BillingDay)

	assert.Equal(t, 1200.0, sub)
}
