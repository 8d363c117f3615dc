package rental

import (
	"time"

	"github.com/google/uuid"
)

// PromotionKind selects how a promotion's value is applied.
type PromotionKind string

const (
	PromoPercent PromotionKind = "percent"
	PromoFlat    PromotionKind = "flat"
)

// Promotion is discount reference data keyed by code.
type Promotion struct {
	Code      string
	Kind      PromotionKind
	Value     int64 // percent points, or flat cents
	ExpiresAt *time.Time
	Active    bool
}

// ValidAt reports whether the promotion can be applied at the given time.
func (p Promotion) ValidAt(t time.Time) bool {
	if !p.Active {
		return false
	}
	return p.ExpiresAt == nil || p.ExpiresAt.After(t)
}

// InsuranceKind selects how an insurance fee accrues.
type InsuranceKind string

const (
	InsuranceFlat   InsuranceKind = "flat"
	InsurancePerDay InsuranceKind = "per_day"
)

// InsuranceOption is insurance reference data.
type InsuranceOption struct {
	ID       uuid.UUID
	Name     string
	Kind     InsuranceKind
	FeeCents int64
}

// QuoteInput holds the pricing inputs for one booking window.
type QuoteInput struct {
	DailyRateCents int64
	Window         Window
	Promotion      *Promotion       // nil when absent or rejected
	Insurance      *InsuranceOption // nil when not taken
}

// Quote is the priced breakdown of a booking, in cents.
type Quote struct {
	Days           int64
	BaseCents      int64
	DiscountCents  int64
	InsuranceCents int64
	TotalCents     int64
}

// ComputeQuote prices a window: whole days (rounded up, minimum one) times the
// daily rate, minus the promotion, plus the insurance fee. The discounted base
// is clamped at zero so no promotion can produce a negative charge.
func ComputeQuote(in QuoteInput) Quote {
	days := in.Window.Days()
	base := days * in.DailyRateCents

	var discount int64
	if in.Promotion != nil {
		switch in.Promotion.Kind {
		case PromoPercent:
			discount = base * in.Promotion.Value / 100
		case PromoFlat:
			discount = in.Promotion.Value
		}
		if discount > base {
			discount = base
		}
	}

	var insurance int64
	if in.Insurance != nil {
		switch in.Insurance.Kind {
		case InsurancePerDay:
			insurance = days * in.Insurance.FeeCents
		default:
			insurance = in.Insurance.FeeCents
		}
	}

	return Quote{
		Days:           days,
		BaseCents:      base,
		DiscountCents:  discount,
		InsuranceCents: insurance,
		TotalCents:     base - discount + insurance,
	}
}
