// Package domain contains the core data types and business rules for the
// Corsa Logbook application. This package has zero knowledge of HTTP or the
// remote backend and is imported by every other internal package
// (rpc, session, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes work deliveries from personal drives.
// It is fixed when a trip is created and never changes afterwards.
type Kind string

const (
	KindWork     Kind = "work"
	KindPersonal Kind = "personal"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindWork || k == KindPersonal
}

// WorkDetails carries the fields that only exist on work trips.
type WorkDetails struct {
	// Packages is the number of packages delivered on the trip.
	Packages int `json:"packages"`
	// Earnings is the amount earned for the trip, in whole currency units.
	Earnings int `json:"earnings"`
}

// PersonalDetails carries the fields that only exist on personal trips.
type PersonalDetails struct {
	// Destination is where the drive went ("Centro", "Zona Norte", ...).
	Destination string `json:"destination"`
}

// Trip represents a single logged drive.
//
// Trip is a tagged union keyed on Kind: exactly one of Work or Personal is
// non-nil, matching the kind. Constructing a trip through NewWorkTrip or
// NewPersonalTrip keeps that invariant; Validate enforces it for trips built
// by hand (e.g. decoded from the wire).
type Trip struct {
	// ID is assigned by the backend on creation and immutable thereafter.
	ID   uuid.UUID `json:"id"`
	Kind Kind      `json:"kind"`
	// Date is the calendar day the trip occurred. The time component is
	// ignored everywhere; only the YYYY-MM-DD part is meaningful.
	Date time.Time `json:"date"`
	// OdometerStart and OdometerEnd are odometer readings in km.
	// Any accepted trip satisfies OdometerEnd > OdometerStart.
	OdometerStart int    `json:"odometer_start"`
	OdometerEnd   int    `json:"odometer_end"`
	Notes         string `json:"notes,omitempty"`

	Work     *WorkDetails     `json:"work,omitempty"`
	Personal *PersonalDetails `json:"personal,omitempty"`
}

// NewWorkTrip builds an unvalidated work trip.
func NewWorkTrip(date time.Time, odoStart, odoEnd, packages, earnings int, notes string) Trip {
	return Trip{
		Kind:          KindWork,
		Date:          date,
		OdometerStart: odoStart,
		OdometerEnd:   odoEnd,
		Notes:         notes,
		Work:          &WorkDetails{Packages: packages, Earnings: earnings},
	}
}

// NewPersonalTrip builds an unvalidated personal trip.
func NewPersonalTrip(date time.Time, odoStart, odoEnd int, destination, notes string) Trip {
	return Trip{
		Kind:          KindPersonal,
		Date:          date,
		OdometerStart: odoStart,
		OdometerEnd:   odoEnd,
		Notes:         notes,
		Personal:      &PersonalDetails{Destination: destination},
	}
}

// Distance returns the kilometres driven: OdometerEnd - OdometerStart.
// It is derived on every read and never stored, so it can never go stale.
func (t Trip) Distance() int {
	return t.OdometerEnd - t.OdometerStart
}

// Earnings returns the trip's earnings, treating personal trips as zero.
func (t Trip) Earnings() int {
	if t.Work == nil {
		return 0
	}
	return t.Work.Earnings
}

// Packages returns the packages delivered, treating personal trips as zero.
func (t Trip) Packages() int {
	if t.Work == nil {
		return 0
	}
	return t.Work.Packages
}

// ISODate returns the trip date formatted as YYYY-MM-DD.
// All date filtering is prefix matching over this representation.
func (t Trip) ISODate() string {
	return t.Date.Format("2006-01-02")
}

// Validate enforces the business rules for creating or editing a trip:
//   - Kind must be work or personal, with the matching details variant set
//     and the other one absent.
//   - Date must be set.
//   - Odometer readings must be non-negative and OdometerEnd > OdometerStart.
//   - Packages and Earnings must be non-negative.
//
// Violations wrap ErrValidation so callers can match with errors.Is.
func (t Trip) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown trip kind %q", ErrValidation, t.Kind)
	}
	switch t.Kind {
	case KindWork:
		if t.Work == nil || t.Personal != nil {
			return fmt.Errorf("%w: work trip must carry work details only", ErrValidation)
		}
		if t.Work.Packages < 0 {
			return fmt.Errorf("%w: packages must not be negative", ErrValidation)
		}
		if t.Work.Earnings < 0 {
			return fmt.Errorf("%w: earnings must not be negative", ErrValidation)
		}
	case KindPersonal:
		if t.Personal == nil || t.Work != nil {
			return fmt.Errorf("%w: personal trip must carry personal details only", ErrValidation)
		}
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if t.OdometerStart < 0 || t.OdometerEnd < 0 {
		return fmt.Errorf("%w: odometer readings must not be negative", ErrValidation)
	}
	if t.OdometerEnd <= t.OdometerStart {
		return fmt.Errorf("%w: end odometer must be greater than start odometer", ErrValidation)
	}
	return nil
}
