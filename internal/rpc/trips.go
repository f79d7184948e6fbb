package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lmoreno/corsa-logbook/internal/domain"
)

// tripWire is the backend's trip shape. Field names are the backend's
// (Spanish); the mapping to the domain's tagged union lives entirely in
// this file so nothing above the rpc layer ever sees them.
type tripWire struct {
	ID           *uuid.UUID `json:"id,omitempty"`
	Tipo         string     `json:"tipo"`
	Fecha        string     `json:"fecha"`
	KmInicio     int        `json:"kmInicio"`
	KmFinal      int        `json:"kmFinal"`
	Paquetes     *int       `json:"paquetes,omitempty"`
	Destino      *string    `json:"destino,omitempty"`
	DineroGanado *int       `json:"dineroGanado,omitempty"`
	Notas        *string    `json:"notas,omitempty"`
}

const (
	tipoWork     = "trabajo"
	tipoPersonal = "personal"
)

// deleteInput identifies a trip for trips.delete.
type deleteInput struct {
	ID uuid.UUID `json:"id"`
}

// ListTrips fetches the full trip collection for the session.
// Always returns a non-nil slice on success.
func (c *Client) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	var wires []tripWire
	if err := c.get(ctx, "trips.list", &wires, "Failed to load trips"); err != nil {
		return nil, err
	}
	trips := make([]domain.Trip, 0, len(wires))
	for _, w := range wires {
		t, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("rpc.Client.ListTrips: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// CreateTrip persists a new trip and returns the stored record with its
// backend-assigned ID.
func (c *Client) CreateTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	in := toWire(trip)
	in.ID = nil // the backend assigns identity
	var w tripWire
	if err := c.post(ctx, "trips.create", in, &w, "Failed to save trip"); err != nil {
		return domain.Trip{}, err
	}
	created, err := w.toDomain()
	if err != nil {
		return domain.Trip{}, fmt.Errorf("rpc.Client.CreateTrip: %w", err)
	}
	return created, nil
}

// UpdateTrip overwrites an existing trip's mutable fields.
func (c *Client) UpdateTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var w tripWire
	if err := c.post(ctx, "trips.update", toWire(trip), &w, "Failed to update trip"); err != nil {
		return domain.Trip{}, err
	}
	updated, err := w.toDomain()
	if err != nil {
		return domain.Trip{}, fmt.Errorf("rpc.Client.UpdateTrip: %w", err)
	}
	return updated, nil
}

// DeleteTrip removes a trip by ID.
func (c *Client) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	return c.post(ctx, "trips.delete", deleteInput{ID: id}, nil, "Failed to delete trip")
}

// toWire flattens the domain's tagged union into the backend shape.
// Variant fields are emitted only for the matching kind.
func toWire(t domain.Trip) tripWire {
	w := tripWire{
		Fecha:    t.ISODate(),
		KmInicio: t.OdometerStart,
		KmFinal:  t.OdometerEnd,
	}
	if t.ID != uuid.Nil {
		id := t.ID
		w.ID = &id
	}
	if t.Notes != "" {
		notes := t.Notes
		w.Notas = &notes
	}
	switch t.Kind {
	case domain.KindPersonal:
		w.Tipo = tipoPersonal
		if t.Personal != nil {
			dest := t.Personal.Destination
			w.Destino = &dest
		}
	default:
		w.Tipo = tipoWork
		if t.Work != nil {
			packages, earnings := t.Work.Packages, t.Work.Earnings
			w.Paquetes = &packages
			w.DineroGanado = &earnings
		}
	}
	return w
}

// toDomain rebuilds the tagged union from a wire record. Stray variant
// fields on the wrong kind are dropped here, so a personal trip can never
// carry packages into the aggregates.
func (w tripWire) toDomain() (domain.Trip, error) {
	date, err := parseWireDate(w.Fecha)
	if err != nil {
		return domain.Trip{}, err
	}
	t := domain.Trip{
		Date:          date,
		OdometerStart: w.KmInicio,
		OdometerEnd:   w.KmFinal,
	}
	if w.ID != nil {
		t.ID = *w.ID
	}
	if w.Notas != nil {
		t.Notes = *w.Notas
	}
	switch w.Tipo {
	case tipoPersonal:
		t.Kind = domain.KindPersonal
		t.Personal = &domain.PersonalDetails{}
		if w.Destino != nil {
			t.Personal.Destination = *w.Destino
		}
	case tipoWork:
		t.Kind = domain.KindWork
		t.Work = &domain.WorkDetails{}
		if w.Paquetes != nil {
			t.Work.Packages = *w.Paquetes
		}
		if w.DineroGanado != nil {
			t.Work.Earnings = *w.DineroGanado
		}
	default:
		return domain.Trip{}, fmt.Errorf("unknown trip type %q", w.Tipo)
	}
	return t, nil
}

// parseWireDate accepts the two date encodings the backend is known to
// emit: a bare "2006-01-02" and a full RFC 3339 timestamp. Only the
// calendar day is kept either way.
func parseWireDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed trip date %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
