package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundFraction maps the time left before the start to the refunded share of the total:
// more than 48h - everything, more than 24h - half, otherwise nothing.
func RefundFraction(startAt, now time.Time) decimal.Decimal {
	until := startAt.Sub(now)
	switch {
	case until > FullRefundHours*time.Hour:
		return decimal.NewFromInt(1)
	case until > HalfRefundHours*time.Hour:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}

// RefundAmount is the amount returned when a reservation is cancelled at now.
func RefundAmount(total float64, startAt, now time.Time) float64 {
	return decimal.NewFromFloat(total).Mul(RefundFraction(startAt, now)).Round(2).InexactFloat64()
}
