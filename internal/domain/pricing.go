package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	millisPerHour = int64(time.Hour / time.Millisecond)
	millisPerDay  = 24 * millisPerHour
)

// PricingInput is everything the calculator needs to price a rental.
type PricingInput struct {
	RateType           RateType
	Window             Window
	TimeSlots          []TimeSlot // hourly only; if set, hours are summed from the slots
	BaseRate           *float64   // listed rate of the car for RateType
	AdditionalServices []AdditionalService
	NegotiatedRate     *float64 // accepted negotiation rate, overrides BaseRate
}

// PricingResult is the computed price of a rental.
type PricingResult struct {
	Rate           float64
	TotalHours     *float64
	TotalDays      *int
	ServicesAmount float64
	TotalAmount    float64
	OriginalAmount *float64
	IsNegotiated   bool
	Deposit        float64
}

// ComputeTotal prices a rental.
//
// Hourly: hours are the sum of explicit time slots, or the window length; fractions allowed.
// Daily: days are the window length divided by 24h and rounded up, so 25 hours is 2 days.
// Additional services are added after the rate. The deposit is DepositPercent of the total,
// rounded to a whole amount.
func ComputeTotal(in PricingInput) (*PricingResult, error) {
	if !in.RateType.IsValid() {
		return nil, fmt.Errorf("%w: unknown rate type %q", ErrValidation, in.RateType)
	}
	if in.BaseRate == nil || *in.BaseRate <= 0 {
		return nil, fmt.Errorf("%w: no %s rate set", ErrConfiguration, in.RateType)
	}
	if err := in.Window.Validate(); err != nil {
		return nil, err
	}

	baseRate := decimal.NewFromFloat(*in.BaseRate)
	rate := baseRate
	negotiated := false
	if in.NegotiatedRate != nil {
		if *in.NegotiatedRate <= 0 {
			return nil, fmt.Errorf("%w: negotiated rate must be positive", ErrValidation)
		}
		rate = decimal.NewFromFloat(*in.NegotiatedRate)
		negotiated = true
	}

	services := decimal.Zero
	for _, s := range in.AdditionalServices {
		if s.Price < 0 {
			return nil, fmt.Errorf("%w: additional service %q has negative price", ErrValidation, s.Name)
		}
		services = services.Add(decimal.NewFromFloat(s.Price))
	}

	result := &PricingResult{
		Rate:           rate.Round(2).InexactFloat64(),
		IsNegotiated:   negotiated,
		ServicesAmount: services.Round(2).InexactFloat64(),
	}

	var units decimal.Decimal
	switch in.RateType {
	case RateHourly:
		hours, err := billableHours(in.Window, in.TimeSlots)
		if err != nil {
			return nil, err
		}
		units = hours
		h := hours.Round(2).InexactFloat64()
		result.TotalHours = &h
	case RateDaily:
		days := billableDays(in.Window)
		units = decimal.NewFromInt(int64(days))
		result.TotalDays = &days
	}

	total := units.Mul(rate).Add(services).Round(2)
	result.TotalAmount = total.InexactFloat64()
	result.Deposit = DepositFor(total)

	if negotiated {
		original := units.Mul(baseRate).Add(services).Round(2).InexactFloat64()
		result.OriginalAmount = &original
	}

	return result, nil
}

// DepositFor returns round(total * DepositPercent / 100).
func DepositFor(total decimal.Decimal) float64 {
	return total.Mul(decimal.NewFromInt(DepositPercent)).Div(decimal.NewFromInt(100)).Round(0).InexactFloat64()
}

func billableHours(window Window, slots []TimeSlot) (decimal.Decimal, error) {
	if len(slots) == 0 {
		return decimal.NewFromInt(window.Duration().Milliseconds()).Div(decimal.NewFromInt(millisPerHour)), nil
	}

	var total int64
	for i, s := range slots {
		if !s.Start.Before(s.End) {
			return decimal.Zero, fmt.Errorf("%w: time slot %d start must be before end", ErrValidation, i)
		}
		total += s.End.Sub(s.Start).Milliseconds()
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(millisPerHour)), nil
}

func billableDays(window Window) int {
	ms := window.Duration().Milliseconds()
	return int((ms + millisPerDay - 1) / millisPerDay)
}

// ApplyPricing copies the computed price onto the reservation. The deposit stays unpaid.
func (r *Reservation) ApplyPricing(p *PricingResult) {
	rate := p.Rate
	r.Rate = &rate
	r.TotalHours = p.TotalHours
	r.TotalDays = p.TotalDays
	r.ServicesAmount = p.ServicesAmount
	r.TotalAmount = p.TotalAmount
	r.OriginalAmount = p.OriginalAmount
	r.IsNegotiated = p.IsNegotiated
	r.Deposit = Deposit{Amount: p.Deposit}
}
