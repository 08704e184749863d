package domain

import (
	"fmt"
	"time"
)

// ReviewTargetKind is the kind of entity being reviewed.
type ReviewTargetKind string

const (
	TargetDriver  ReviewTargetKind = "driver"
	TargetProduct ReviewTargetKind = "product"
	TargetCar     ReviewTargetKind = "car"
)

// ReviewTarget identifies the reviewed entity.
type ReviewTarget struct {
	Kind ReviewTargetKind
	ID   int64
}

// Validate checks the kind and id.
func (t ReviewTarget) Validate() error {
	switch t.Kind {
	case TargetDriver, TargetProduct, TargetCar:
	default:
		return fmt.Errorf("%w: unknown review target %q", ErrValidation, t.Kind)
	}
	if t.ID <= 0 {
		return fmt.Errorf("%w: review target id must be positive", ErrValidation)
	}
	return nil
}

// Rateable is implemented by every entity that carries an aggregate rating.
type Rateable interface {
	ApplyRatingUpdate(avg float64, count int)
}

// Driver is the rateable side of a hired driver.
type Driver struct {
	ID          int64
	Name        string
	RatingAvg   float64
	RatingCount int
}

// ApplyRatingUpdate implements Rateable.
func (d *Driver) ApplyRatingUpdate(avg float64, count int) {
	d.RatingAvg = avg
	d.RatingCount = count
}

// Product is the rateable side of a marketplace part.
type Product struct {
	ID          int64
	VendorID    int64
	Title       string
	RatingAvg   float64
	RatingCount int
}

// ApplyRatingUpdate implements Rateable.
func (p *Product) ApplyRatingUpdate(avg float64, count int) {
	p.RatingAvg = avg
	p.RatingCount = count
}

// Review is a single rating left by a user.
type Review struct {
	ID        int64
	Target    ReviewTarget
	AuthorID  int64
	Rating    int
	Comment   *string
	CreatedAt time.Time
}

// Validate checks the rating bounds and target.
func (r *Review) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return err
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	return nil
}

// RatingAggregate is the recomputed average and count for a target.
type RatingAggregate struct {
	Avg   float64
	Count int
}
