package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoreno/corsa-logbook/internal/domain"
	"github.com/lmoreno/corsa-logbook/internal/handler"
	"github.com/lmoreno/corsa-logbook/web"
)

// ---- mocks -----------------------------------------------------------------

type mockAuth struct {
	register func(ctx context.Context, email, password, name string) (domain.User, error)
	login    func(ctx context.Context, email, password string) (domain.User, error)

	authenticated bool
	user          *domain.User
	logoutCalled  bool
}

func (m *mockAuth) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	if m.register != nil {
		return m.register(ctx, email, password, name)
	}
	return domain.User{Email: email, Name: name}, nil
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (domain.User, error) {
	if m.login != nil {
		return m.login(ctx, email, password)
	}
	return domain.User{Email: email}, nil
}

func (m *mockAuth) CurrentUser(context.Context) *domain.User { return m.user }
func (m *mockAuth) Logout(context.Context)                   { m.logoutCalled = true }
func (m *mockAuth) IsAuthenticated(context.Context) bool     { return m.authenticated }

var _ handler.AuthService = (*mockAuth)(nil)

// mockTrips serves reads from its fixed cache; the mutation func fields
// default to success.
type mockTrips struct {
	refresh func(ctx context.Context) error
	create  func(ctx context.Context, trip domain.Trip) error
	update  func(ctx context.Context, trip domain.Trip) error
	remove  func(ctx context.Context, id uuid.UUID) error

	cache []domain.Trip
}

func (m *mockTrips) Refresh(ctx context.Context) error {
	if m.refresh != nil {
		return m.refresh(ctx)
	}
	return nil
}

func (m *mockTrips) Create(ctx context.Context, trip domain.Trip) error {
	if m.create != nil {
		return m.create(ctx, trip)
	}
	return nil
}

func (m *mockTrips) Update(ctx context.Context, trip domain.Trip) error {
	if m.update != nil {
		return m.update(ctx, trip)
	}
	return nil
}

func (m *mockTrips) Delete(ctx context.Context, id uuid.UUID) error {
	if m.remove != nil {
		return m.remove(ctx, id)
	}
	return nil
}

func (m *mockTrips) Get(id uuid.UUID) (domain.Trip, error) {
	for _, t := range m.cache {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, domain.ErrNotFound
}

func (m *mockTrips) Trips() []domain.Trip                   { return m.cache }
func (m *mockTrips) Filtered(f domain.Filter) []domain.Trip { return f.Apply(m.cache) }
func (m *mockTrips) StatsFor(f domain.Filter) domain.Stats  { return domain.Aggregate(f.Apply(m.cache)) }

func (m *mockTrips) Export(f domain.Filter) ([]byte, string, error) {
	data, err := json.MarshalIndent(f.Apply(m.cache), "", "  ")
	return data, "viajes-2024-03-05.json", err
}

var _ handler.TripManager = (*mockTrips)(nil)

// ---- helpers ---------------------------------------------------------------

func newTestRouter(t *testing.T, auth *mockAuth, trips *mockTrips) http.Handler {
	t.Helper()
	tmpl, err := web.Templates()
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(auth, trips, tmpl, log).Routes()
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// flashOf finds and decodes the flash cookie set on a response.
func flashOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "flash" && c.MaxAge >= 0 {
			raw, err := url.QueryUnescape(c.Value)
			require.NoError(t, err)
			return raw
		}
	}
	return ""
}

func workTrip() domain.Trip {
	t := domain.NewWorkTrip(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 100, 150, 10, 2000, "")
	t.ID = uuid.New()
	return t
}

// ---- health ----------------------------------------------------------------

func TestHandleHealth(t *testing.T) {
	h := newTestRouter(t, &mockAuth{}, &mockTrips{})

	rec := get(h, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// ---- auth gate -------------------------------------------------------------

func TestTripsPage_RedirectsToLoginWhenUnauthenticated(t *testing.T) {
	h := newTestRouter(t, &mockAuth{authenticated: false}, &mockTrips{})

	rec := get(h, "/")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginPage_RedirectsHomeWhenAuthenticated(t *testing.T) {
	h := newTestRouter(t, &mockAuth{authenticated: true}, &mockTrips{})

	rec := get(h, "/login")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLoginPage_RendersForm(t *testing.T) {
	h := newTestRouter(t, &mockAuth{}, &mockTrips{})

	rec := get(h, "/login")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)
	assert.Contains(t, rec.Body.String(), `action="/register"`)
}

// ---- login / register / logout ---------------------------------------------

func TestHandleLogin_OK(t *testing.T) {
	auth := &mockAuth{}
	h := newTestRouter(t, auth, &mockTrips{})

	rec := postForm(t, h, "/login", url.Values{
		"email":    {"lena@example.com"},
		"password": {"hunter22"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHandleLogin_FailureRerendersWithMessage(t *testing.T) {
	auth := &mockAuth{
		login: func(_ context.Context, _, _ string) (domain.User, error) {
			return domain.User{}, errors.New("Login failed")
		},
	}
	h := newTestRouter(t, auth, &mockTrips{})

	rec := postForm(t, h, "/login", url.Values{
		"email":    {"lena@example.com"},
		"password": {"wrong"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login failed")
	// The form re-fills the email so only the password must be retyped.
	assert.Contains(t, rec.Body.String(), "lena@example.com")
}

func TestHandleRegister_FailureRerendersWithMessage(t *testing.T) {
	auth := &mockAuth{
		register: func(_ context.Context, _, _, _ string) (domain.User, error) {
			return domain.User{}, errors.New("Email already registered")
		},
	}
	h := newTestRouter(t, auth, &mockTrips{})

	rec := postForm(t, h, "/register", url.Values{
		"email":    {"lena@example.com"},
		"password": {"hunter22"},
		"name":     {"Lena"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
}

func TestHandleLogout(t *testing.T) {
	auth := &mockAuth{authenticated: true}
	h := newTestRouter(t, auth, &mockTrips{})

	rec := postForm(t, h, "/logout", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.True(t, auth.logoutCalled)
}

// ---- trips page ------------------------------------------------------------

func TestTripsPage_RendersTripsAndStats(t *testing.T) {
	trips := &mockTrips{cache: []domain.Trip{workTrip()}}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := get(h, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2024-03-05")
	assert.Contains(t, body, "10 packages")
}

func TestTripsPage_RefreshFailureStillRenders(t *testing.T) {
	trips := &mockTrips{
		cache:   []domain.Trip{workTrip()},
		refresh: func(context.Context) error { return errors.New("Failed to load trips") },
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := get(h, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Failed to load trips")
	// The stale cache is still shown.
	assert.Contains(t, body, "2024-03-05")
}

func TestTripsPage_FilterNarrowsRenderedSet(t *testing.T) {
	work := workTrip()
	personal := domain.NewPersonalTrip(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 150, 170, "Centro", "")
	personal.ID = uuid.New()
	trips := &mockTrips{cache: []domain.Trip{work, personal}}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := get(h, "/?kind=personal")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Centro")
	assert.NotContains(t, body, "10 packages")
}

// ---- create ----------------------------------------------------------------

func TestHandleCreateTrip_OK(t *testing.T) {
	var got domain.Trip
	trips := &mockTrips{
		create: func(_ context.Context, trip domain.Trip) error {
			got = trip
			return nil
		},
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := postForm(t, h, "/trips", url.Values{
		"kind":           {"work"},
		"date":           {"2024-03-05"},
		"odometer_start": {"100"},
		"odometer_end":   {"150"},
		"packages":       {"10"},
		"earnings":       {"2000"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "success:Trip saved", flashOf(t, rec))
	assert.Equal(t, domain.KindWork, got.Kind)
	assert.Equal(t, 50, got.Distance())
	require.NotNil(t, got.Work)
	assert.Equal(t, 2000, got.Work.Earnings)
}

// Unparsable numbers coerce to 0; the odometer invariant then rejects the
// pair, so the user sees a validation notice rather than a saved trip.
func TestHandleCreateTrip_GarbageNumbersRejected(t *testing.T) {
	trips := &mockTrips{
		create: func(_ context.Context, trip domain.Trip) error {
			return trip.Validate()
		},
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := postForm(t, h, "/trips", url.Values{
		"kind":           {"work"},
		"date":           {"2024-03-05"},
		"odometer_start": {"abc"},
		"odometer_end":   {"xyz"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(flashOf(t, rec), "error:"), "expected an error notice")
}

func TestHandleCreateTrip_ErrorNoticeStripsWrapping(t *testing.T) {
	trips := &mockTrips{
		create: func(_ context.Context, _ domain.Trip) error {
			return errors.New("session.Manager.Create: validation error: end odometer must be greater than start odometer")
		},
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := postForm(t, h, "/trips", url.Values{"kind": {"work"}})

	assert.Equal(t, "error:end odometer must be greater than start odometer", flashOf(t, rec))
}

// ---- edit / update ---------------------------------------------------------

func TestHandleEditPage_OK(t *testing.T) {
	trip := workTrip()
	trips := &mockTrips{cache: []domain.Trip{trip}}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := get(h, "/trips/"+trip.ID.String()+"/edit")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2024-03-05")
	// Work trips edit packages and earnings, never a destination.
	assert.Contains(t, body, `name="packages"`)
	assert.NotContains(t, body, `name="destination"`)
}

func TestHandleEditPage_MalformedID(t *testing.T) {
	h := newTestRouter(t, &mockAuth{authenticated: true}, &mockTrips{})

	rec := get(h, "/trips/not-a-uuid/edit")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEditPage_UnknownID(t *testing.T) {
	h := newTestRouter(t, &mockAuth{authenticated: true}, &mockTrips{})

	rec := get(h, "/trips/"+uuid.NewString()+"/edit")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// The form cannot flip a trip's kind: the update is built with the stored
// trip's kind regardless of what the submission claims.
func TestHandleUpdateTrip_KindComesFromStoredTrip(t *testing.T) {
	existing := workTrip()
	var got domain.Trip
	trips := &mockTrips{
		cache: []domain.Trip{existing},
		update: func(_ context.Context, trip domain.Trip) error {
			got = trip
			return nil
		},
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := postForm(t, h, "/trips/"+existing.ID.String(), url.Values{
		"kind":           {"personal"},
		"date":           {"2024-03-05"},
		"odometer_start": {"100"},
		"odometer_end":   {"180"},
		"packages":       {"12"},
		"earnings":       {"2500"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, domain.KindWork, got.Kind)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, 180, got.OdometerEnd)
}

func TestHandleUpdateTrip_FailureRedirectsBackToEdit(t *testing.T) {
	existing := workTrip()
	trips := &mockTrips{
		cache: []domain.Trip{existing},
		update: func(_ context.Context, _ domain.Trip) error {
			return errors.New("Failed to update trip")
		},
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := postForm(t, h, "/trips/"+existing.ID.String(), url.Values{
		"date":           {"2024-03-05"},
		"odometer_start": {"100"},
		"odometer_end":   {"180"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/trips/"+existing.ID.String()+"/edit", rec.Header().Get("Location"))
	assert.Equal(t, "error:Failed to update trip", flashOf(t, rec))
}

// ---- delete ----------------------------------------------------------------

func TestHandleDeleteTrip_OK(t *testing.T) {
	existing := workTrip()
	var got uuid.UUID
	trips := &mockTrips{
		cache: []domain.Trip{existing},
		remove: func(_ context.Context, id uuid.UUID) error {
			got = id
			return nil
		},
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := postForm(t, h, "/trips/"+existing.ID.String()+"/delete", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, existing.ID, got)
	assert.Equal(t, "success:Trip deleted", flashOf(t, rec))
}

func TestHandleDeleteTrip_FailureFlashesError(t *testing.T) {
	existing := workTrip()
	trips := &mockTrips{
		cache:  []domain.Trip{existing},
		remove: func(_ context.Context, _ uuid.UUID) error { return errors.New("Failed to delete trip") },
	}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := postForm(t, h, "/trips/"+existing.ID.String()+"/delete", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "error:Failed to delete trip", flashOf(t, rec))
}

// ---- export ----------------------------------------------------------------

func TestHandleExport(t *testing.T) {
	trips := &mockTrips{cache: []domain.Trip{workTrip()}}
	h := newTestRouter(t, &mockAuth{authenticated: true}, trips)

	rec := get(h, "/export?kind=work")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="viajes-2024-03-05.json"`, rec.Header().Get("Content-Disposition"))

	var got []domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestHandleExport_EmptySet(t *testing.T) {
	h := newTestRouter(t, &mockAuth{authenticated: true}, &mockTrips{})

	rec := get(h, "/export")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}
