package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/auth"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/engine"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/payments"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/slots"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/store"
)

const testAdminPassword = "test-password"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := store.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	eng := engine.New(engine.Config{
		Store:          st,
		Hours:          slots.DefaultHours,
		SessionTimeout: time.Minute,
		Logger:         &logger,
	})
	eng.Start()
	t.Cleanup(eng.Close)

	srv := New(Config{
		Engine:         eng,
		Auth:           auth.NewService(testAdminPassword, "test-secret", time.Hour),
		Payments:       payments.NewGenerator("sixers@upi", "Sixers Cafe"),
		Logger:         &logger,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	if resp.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func adminToken(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/login",
		map[string]string{"password": testAdminPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createBooking walks the whole customer flow and returns the booking id.
func createBooking(t *testing.T, ts *httptest.Server, date string, slotIDs ...string) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/sessions",
		map[string]string{"date": date}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID, _ := body["id"].(string)
	require.NotEmpty(t, sessionID)

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+sessionID+"/contact",
		map[string]string{"fullName": "Rahul Sharma", "mobileNumber": "9876543210"}, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, slotID := range slotIDs {
		resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/slots",
			map[string]string{"slotId": slotID}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/submit", nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	booking, _ := body["booking"].(map[string]interface{})
	require.NotNil(t, booking)
	id, _ := booking["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListSlotsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/slots?date=2024-01-01", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-01-01", body["date"])
	catalog, _ := body["slots"].([]interface{})
	assert.Len(t, catalog, 24)

	// The whole free day is one consecutive run.
	runs, _ := body["availableRuns"].([]interface{})
	require.Len(t, runs, 1)
	run, _ := runs[0].([]interface{})
	assert.Len(t, run, 24)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/slots?date=bogus", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingFlow(t *testing.T) {
	ts := newTestServer(t)

	id := createBooking(t, ts, "2024-01-01", "2024-01-01-10:00", "2024-01-01-11:00")
	assert.Len(t, id, 8)

	// The booked slots read as unavailable afterwards.
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/slots?date=2024-01-01", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	catalog, _ := body["slots"].([]interface{})
	unavailable := 0
	for _, raw := range catalog {
		s, _ := raw.(map[string]interface{})
		if avail, _ := s["isAvailable"].(bool); !avail {
			unavailable++
		}
	}
	assert.Equal(t, 2, unavailable)

	// The booked block splits the day into two consecutive runs.
	runs, _ := body["availableRuns"].([]interface{})
	assert.Len(t, runs, 2)
}

func TestSubmitReturnsPaymentLink(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/sessions",
		map[string]string{"date": "2024-01-01"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := body["id"].(string)

	doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+sessionID+"/contact",
		map[string]string{"fullName": "Rahul Sharma", "mobileNumber": "9876543210"}, "")
	doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/slots",
		map[string]string{"slotId": "2024-01-01-10:00"}, "")

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/submit", nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	link, _ := body["paymentLink"].(string)
	assert.Contains(t, link, "upi://pay?")
	assert.Contains(t, link, "am=600")
}

func TestSessionValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/sessions",
		map[string]string{"date": "2024-01-01"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := body["id"].(string)

	// Submitting an empty form fails validation.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/submit", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown session is a 404.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/sessions/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Unknown slot id is a 400.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/slots",
		map[string]string{"slotId": "2099-01-01-99:00"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Bad JSON body is a 400.
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/sessions", bytes.NewReader([]byte("{nope")))
	req.Header.Set("Content-Type", "application/json")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestDeselectAndReset(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/sessions",
		map[string]string{"date": "2024-01-01"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := body["id"].(string)

	doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/slots",
		map[string]string{"slotId": "2024-01-01-10:00"}, "")

	resp, body = doJSON(t, http.MethodDelete,
		ts.URL+"/api/sessions/"+sessionID+"/slots/2024-01-01-10:00", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["totalAmount"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+sessionID+"/reset", nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCancelSession(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/sessions",
		map[string]string{"date": "2024-01-01"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := body["id"].(string)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/sessions/"+sessionID, nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The session is gone.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/sessions/"+sessionID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Cancelling again is a no-op.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/sessions/"+sessionID, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestPaymentQREndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/payments/qr?amount=600&note=test")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Get(ts.URL + "/api/payments/qr?amount=-5")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/admin/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/admin/bookings", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/admin/login",
		map[string]string{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := adminToken(t, ts)
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/admin/bookings", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminBookingLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := adminToken(t, ts)

	id := createBooking(t, ts, "2024-01-01", "2024-01-01-10:00", "2024-01-01-11:00")

	// Approve.
	resp, _ := doJSON(t, http.MethodPatch, ts.URL+"/api/admin/bookings/"+id+"/status",
		map[string]string{"status": "approved"}, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/admin/bookings", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bookings, _ := body["bookings"].([]interface{})
	require.Len(t, bookings, 1)
	first, _ := bookings[0].(map[string]interface{})
	assert.Equal(t, "approved", first["paymentStatus"])

	// Invalid decision.
	resp, _ = doJSON(t, http.MethodPatch, ts.URL+"/api/admin/bookings/"+id+"/status",
		map[string]string{"status": "pending"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Strike one slot.
	resp, _ = doJSON(t, http.MethodDelete,
		ts.URL+"/api/admin/bookings/"+id+"/slots/2024-01-01-10:00", nil, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/admin/bookings", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bookings, _ = body["bookings"].([]interface{})
	first, _ = bookings[0].(map[string]interface{})
	slotList, _ := first["slots"].([]interface{})
	assert.Len(t, slotList, 1)
	assert.EqualValues(t, 600, first["totalAmount"])

	// Delete, twice. Both succeed.
	for i := 0; i < 2; i++ {
		resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/admin/bookings/"+id, nil, token)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, "delete attempt %d", i+1)
	}
}

func TestAdminExport(t *testing.T) {
	ts := newTestServer(t)
	token := adminToken(t, ts)
	createBooking(t, ts, "2024-01-01", "2024-01-01-10:00")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/admin/bookings/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, resp.Header.Get("Content-Length"), "workbook is fully rendered before headers")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip container")
	assert.Equal(t, strconv.Itoa(len(data)), resp.Header.Get("Content-Length"))
}

func TestCORSAllowedOrigins(t *testing.T) {
	st := store.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	eng := engine.New(engine.Config{
		Store:  st,
		Hours:  slots.DefaultHours,
		Logger: &logger,
	})
	eng.Start()
	defer eng.Close()

	srv := New(Config{
		Engine:         eng,
		Auth:           auth.NewService(testAdminPassword, "test-secret", time.Hour),
		Payments:       payments.NewGenerator("sixers@upi", "Sixers Cafe"),
		Logger:         &logger,
		AllowedOrigins: []string{"https://app.example.com"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	get := func(origin string) string {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/slots?date=2024-01-01", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.Header.Get("Access-Control-Allow-Origin")
	}

	assert.Equal(t, "https://app.example.com", get("https://app.example.com"))
	assert.Empty(t, get("https://evil.example.com"))
}

func TestRateLimit(t *testing.T) {
	st := store.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	eng := engine.New(engine.Config{
		Store:  st,
		Hours:  slots.DefaultHours,
		Logger: &logger,
	})
	eng.Start()
	defer eng.Close()

	srv := New(Config{
		Engine:         eng,
		Auth:           auth.NewService(testAdminPassword, "test-secret", time.Hour),
		Payments:       payments.NewGenerator("sixers@upi", "Sixers Cafe"),
		Logger:         &logger,
		RateLimitRPS:   1,
		RateLimitBurst: 2,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var limited bool
	for i := 0; i < 5; i++ {
		resp, err := http.Get(fmt.Sprintf("%s/health", ts.URL))
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "burst exhaustion returns 429")
}

func TestModelsJSONShape(t *testing.T) {
	// The customer UI depends on these exact field names.
	data, err := json.Marshal(models.Slot{ID: "2024-01-01-10:00", Time: "10:00", Price: 600, Available: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"2024-01-01-10:00","time":"10:00","price":600,"isAvailable":true}`, string(data))
}
