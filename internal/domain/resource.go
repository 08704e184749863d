package domain

import (
	"fmt"
	"time"
)

// AvailabilityStatus is the car's listing flag, synchronized from rental reservations.
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilityRented    AvailabilityStatus = "rented"
)

// Car is the bookable resource.
type Car struct {
	ID                 int64
	OwnerID            int64
	Title              string
	HourlyRate         *float64
	DailyRate          *float64
	AvailabilityStatus AvailabilityStatus
	TimeZone           *string // IANA name; nil = service default
	RatingAvg          float64
	RatingCount        int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RateFor returns the listed rate for the given rate type.
// A car without a rate for the requested type cannot be priced.
func (c *Car) RateFor(rateType RateType) (float64, error) {
	var rate *float64
	switch rateType {
	case RateHourly:
		rate = c.HourlyRate
	case RateDaily:
		rate = c.DailyRate
	default:
		return 0, fmt.Errorf("%w: unknown rate type %q", ErrValidation, rateType)
	}

	if rate == nil || *rate <= 0 {
		return 0, fmt.Errorf("%w: car %d has no %s rate", ErrConfiguration, c.ID, rateType)
	}
	return *rate, nil
}

// Location returns the car's time zone, or fallback when none is set or it is unknown.
func (c *Car) Location(fallback *time.Location) *time.Location {
	if c.TimeZone == nil || *c.TimeZone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(*c.TimeZone)
	if err != nil {
		return fallback
	}
	return loc
}

// ApplyRatingUpdate implements Rateable.
func (c *Car) ApplyRatingUpdate(avg float64, count int) {
	c.RatingAvg = avg
	c.RatingCount = count
}
