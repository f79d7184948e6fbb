package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lmoreno/corsa-logbook/internal/domain"
)

// facetLink is one selectable narrowing option on the trips page.
// Its URL encodes the whole resulting filter, so selecting a coarser facet
// clears the finer ones by construction.
type facetLink struct {
	Label    string
	URL      string
	Selected bool
}

// tripsPageData feeds the trips template.
type tripsPageData struct {
	Flash Flash
	// LoadError is set when the refresh against the backend failed; the
	// page still renders with whatever the cache last held.
	LoadError string
	Filter    domain.Filter
	Kinds     []facetLink
	Years     []facetLink
	Months    []facetLink
	Days      []facetLink
	Trips     []domain.Trip
	Stats     domain.Stats
	// Today pre-fills the date input on the creation forms.
	Today string
	// ExportURL downloads the set currently shown.
	ExportURL string
}

// editPageData feeds the edit template.
type editPageData struct {
	Flash Flash
	Trip  domain.Trip
}

// handleTripsPage handles GET /.
// Every visit refetches the trip list: the backend is authoritative and
// the cache is only a rendering convenience. A failed refresh surfaces a
// notice and renders the stale cache; the page stays interactive.
func (s *Server) handleTripsPage(w http.ResponseWriter, r *http.Request) {
	data := tripsPageData{
		Flash: popFlash(w, r),
		Today: time.Now().UTC().Format("2006-01-02"),
	}

	if err := s.trips.Refresh(r.Context()); err != nil {
		s.log.WarnContext(r.Context(), "trip refresh failed", "error", err)
		data.LoadError = userMessage(err)
	}

	f := filterFromQuery(r.URL.Query())
	all := s.trips.Trips()

	data.Filter = f
	data.Kinds = kindLinks(f)
	data.Years = yearLinks(f, domain.Years(all))
	data.Months = monthLinks(f, domain.Months(all, f.Year))
	data.Days = dayLinks(f, domain.Days(all, f.Year, f.Month))
	data.Trips = s.trips.Filtered(f)
	data.Stats = s.trips.StatsFor(f)
	data.ExportURL = "/export?" + filterQuery(f)

	s.render(w, "trips", data)
}

// handleCreateTrip handles POST /trips.
// Validation runs before any backend call; a validation failure surfaces a
// notice and leaves the cache untouched.
func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	trip := tripFromForm(r)

	if err := s.trips.Create(r.Context(), trip); err != nil {
		setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	setFlash(w, "success", "Trip saved")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleEditPage handles GET /trips/{id}/edit.
// The visible field set follows the trip's kind: work trips edit packages
// and earnings, personal trips edit the destination, never both.
func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	trip, err := s.trips.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "edit", editPageData{Flash: popFlash(w, r), Trip: trip})
}

// handleUpdateTrip handles POST /trips/{id}.
// Kind is immutable: the update reuses the stored trip's kind regardless of
// what the form claims.
func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	existing, err := s.trips.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	trip := tripFromFormAs(r, existing.Kind)
	trip.ID = id

	if err := s.trips.Update(r.Context(), trip); err != nil {
		setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, "/trips/"+id.String()+"/edit", http.StatusSeeOther)
		return
	}
	setFlash(w, "success", "Trip updated")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDeleteTrip handles POST /trips/{id}/delete.
// The confirm step lives in the markup; this endpoint only ever fires from
// a confirmed form submission.
func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		setFlash(w, "error", userMessage(err))
	} else {
		setFlash(w, "success", "Trip deleted")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ---- form and query parsing ------------------------------------------------

// tripFromForm builds a trip from the creation form, using the kind the
// form declares. Unknown kinds fall through to Validate, which rejects them.
func tripFromForm(r *http.Request) domain.Trip {
	return tripFromFormAs(r, domain.Kind(r.FormValue("kind")))
}

// tripFromFormAs builds a trip of the given kind from form fields.
//
// Numeric fields parse leniently: an absent or unparsable value becomes 0.
// The odometer invariant still rejects the resulting non-increasing pair,
// so garbage input cannot produce a trip with non-positive distance.
func tripFromFormAs(r *http.Request, kind domain.Kind) domain.Trip {
	date, _ := time.Parse("2006-01-02", r.FormValue("date"))
	odoStart := parseIntOr0(r.FormValue("odometer_start"))
	odoEnd := parseIntOr0(r.FormValue("odometer_end"))
	notes := strings.TrimSpace(r.FormValue("notes"))

	if kind == domain.KindPersonal {
		dest := strings.TrimSpace(r.FormValue("destination"))
		return domain.NewPersonalTrip(date, odoStart, odoEnd, dest, notes)
	}
	packages := parseIntOr0(r.FormValue("packages"))
	earnings := parseIntOr0(r.FormValue("earnings"))
	t := domain.NewWorkTrip(date, odoStart, odoEnd, packages, earnings, notes)
	t.Kind = kind // preserve an unknown kind so validation can name it
	return t
}

// parseIntOr0 converts a form value to an int, coercing anything
// unparsable to 0.
func parseIntOr0(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// filterFromQuery decodes the filter from query parameters. Finer date
// components are only honored when every coarser one is present, which
// makes a stale month or day from an old URL harmless.
func filterFromQuery(q url.Values) domain.Filter {
	var f domain.Filter
	f.SetKind(domain.ParseKindFilter(q.Get("kind")))
	if year := q.Get("year"); year != "" {
		f.SetYear(year)
		if month := q.Get("month"); month != "" {
			f.SetMonth(month)
			if day := q.Get("day"); day != "" {
				f.SetDay(day)
			}
		}
	}
	return f
}

// kindLinks builds the all/work/personal facet options. Switching kind
// keeps the current date facets.
func kindLinks(f domain.Filter) []facetLink {
	out := make([]facetLink, 0, 3)
	for _, k := range []struct {
		label string
		kind  domain.KindFilter
	}{
		{"All", domain.FilterAll},
		{"Work", domain.FilterWork},
		{"Personal", domain.FilterPersonal},
	} {
		g := f
		g.SetKind(k.kind)
		selected := f.Kind == k.kind || (k.kind == domain.FilterAll && f.Kind == "")
		out = append(out, facetLink{Label: k.label, URL: "/?" + filterQuery(g), Selected: selected})
	}
	return out
}

// yearLinks builds the year facet options. Selecting a year clears the
// month and day facets via Filter.SetYear.
func yearLinks(f domain.Filter, years []string) []facetLink {
	out := make([]facetLink, 0, len(years))
	for _, y := range years {
		g := f
		g.SetYear(y)
		out = append(out, facetLink{Label: y, URL: "/?" + filterQuery(g), Selected: f.Year == y})
	}
	return out
}

// monthLinks builds the month facet options, labelled with English month
// names. Selecting a month clears the day facet via Filter.SetMonth.
func monthLinks(f domain.Filter, months []string) []facetLink {
	out := make([]facetLink, 0, len(months))
	for _, mo := range months {
		g := f
		g.SetMonth(mo)
		label := mo
		if n := parseIntOr0(mo); n >= 1 && n <= 12 {
			label = time.Month(n).String()
		}
		out = append(out, facetLink{Label: label, URL: "/?" + filterQuery(g), Selected: f.Month == mo})
	}
	return out
}

// dayLinks builds the day facet options, labelled without the leading zero.
func dayLinks(f domain.Filter, days []string) []facetLink {
	out := make([]facetLink, 0, len(days))
	for _, d := range days {
		g := f
		g.SetDay(d)
		out = append(out, facetLink{Label: strconv.Itoa(parseIntOr0(d)), URL: "/?" + filterQuery(g), Selected: f.Day == d})
	}
	return out
}

// filterQuery re-encodes a filter as a query string ("kind=work&year=2024").
func filterQuery(f domain.Filter) string {
	q := url.Values{}
	if f.Kind != "" && f.Kind != domain.FilterAll {
		q.Set("kind", string(f.Kind))
	}
	if f.Year != "" {
		q.Set("year", f.Year)
	}
	if f.Month != "" {
		q.Set("month", f.Month)
	}
	if f.Day != "" {
		q.Set("day", f.Day)
	}
	return q.Encode()
}
