package pricing

import (
	"fmt"
	"time"
)

type Config struct {
	TaxRate          float64
	PlatformFeeRate  float64
	Currency         string
	BillingMode      BillingMode
	PreparingHorizon time.Duration
}

func DefaultConfig() Config {
	return Config{
		TaxRate:          DefaultTaxRate,
		Currency:         "INR",
		BillingMode:      BillingTier,
		PreparingHorizon: 24 * time.Hour,
	}
}

type QuoteRequest struct {
	Rates    RateCard
	Window   Window
	Existing []Window
	Now      time.Time
}

// Quote is the priced result for a candidate booking window.
type Quote struct {
	Tier        Tier    `json:"tier"`
	BasePrice   float64 `json:"basePrice"`
	TotalHours  int     `json:"totalHours"`
	TotalDays   int     `json:"totalDays"`
	Units       float64 `json:"units"`
	Subtotal    float64 `json:"subtotal"`
	TaxRate     float64 `json:"taxRate"`
	Tax         float64 `json:"tax"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

// Engine prices booking windows. It holds only configuration and is safe for
// concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if !cfg.BillingMode.Valid() {
		cfg.BillingMode = BillingTier
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Quote(req QuoteRequest) (*Quote, error) {
	if err := ValidateWindow(req.Window, req.Now); err != nil {
		return nil, err
	}

	if a := CheckAvailability(req.Existing, req.Window); !a.Available {
		return nil, &SlotUnavailableError{NextAvailableDate: *a.NextAvailableDate}
	}

	return e.Price(req.Rates, req.Window)
}

// Price runs rate selection and totals without availability or date checks.
func (e *Engine) Price(card RateCard, w Window) (*Quote, error) {
	rate := SelectRate(card, w.Duration())
	if !rate.Available() {
		return nil, &ConfigurationError{Reason: "no price tier is set"}
	}

	usage := Measure(rate, w, e.cfg.BillingMode)
	totals := BuildQuote(Subtotal(rate, usage, e.cfg.BillingMode), e.cfg.TaxRate, e.cfg.PlatformFeeRate)

	base := rate.Price
	if e.cfg.BillingMode == BillingDay {
		base = rate.DailyEquivalent()
	}

	return &Quote{
		Tier:        rate.Tier,
		BasePrice:   Round2(base),
		TotalHours:  usage.TotalHours,
		TotalDays:   usage.TotalDays,
		Units:       usage.Units,
		Subtotal:    totals.Subtotal,
		TaxRate:     e.cfg.TaxRate,
		Tax:         totals.Tax,
		PlatformFee: totals.PlatformFee,
		Total:       totals.Total,
		Currency:    e.cfg.Currency,
	}, nil
}

func (e *Engine) Status(existing []Window, now time.Time) StatusReport {
	return CurrentStatus(existing, now, e.cfg.PreparingHorizon)
}

// ValidateWindow checks ordering and rejects windows starting before the
// current UTC day.
func ValidateWindow(w Window, now time.Time) error {
	ve := newValidationError()

	if w.Start.IsZero() {
		ve.add("startDate", "is required")
	}
	if w.End.IsZero() {
		ve.add("endDate", "is required")
	}
	if ve.empty() && !w.End.After(w.Start) {
		ve.add("endDate", "must be after startDate")
	}
	if !w.Start.IsZero() {
		today := now.UTC().Truncate(24 * time.Hour)
		if w.Start.Before(today) {
			ve.add("startDate", fmt.Sprintf("must not be before %s", today.Format("2006-01-02")))
		}
	}

	if ve.empty() {
		return nil
	}
	return ve
}
