package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain/models"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/repositories/memstore"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memstore.New()
	inv := services.InventoryService{Trips: store}
	hd := h.Handler{
		Auth:      services.AuthService{Users: store, Secret: []byte("router-test"), TokenTTL: time.Hour},
		Inventory: inv,
		Bookings:  services.BookingService{Inventory: inv, Bookings: store, Users: store, OTP: services.AcceptAllOTP{}},
		Payments:  services.PaymentService{Bookings: store, Payments: store, Gateway: services.MockGateway{}},
		Trips:     services.TripService{Trips: store, Bookings: store, Users: store},
		Docs:      services.DocsService{Bookings: store, Trips: store, Payments: store},
	}
	require.NoError(t, hd.Auth.EnsureAdmin(context.Background(), "admin@bus.lk", "adminpass"))
	return &testServer{t: t, engine: NewRouter(intconfig.Env{}, hd), store: store}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode(s.t, w)["token"].(string)
}

func (s *testServer) signup(email, role string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": email, "password": "secret123", "roles": role})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(email, "secret123")
}

func (s *testServer) createTrip(adminToken string, operatorID int64) int64 {
	s.t.Helper()
	dep := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	body := gin.H{
		"routeNumber":        "R-01",
		"busNumber":          "NB-1001",
		"date":               dep,
		"departureTime":      dep,
		"arrivalTime":        dep.Add(3 * time.Hour),
		"price":              1500,
		"totalSeats":         40,
		"availableForLadies": []int{1, 2},
	}
	if operatorID > 0 {
		body["operatorId"] = operatorID
		body["busName"] = "Express"
	}
	w := s.do(http.MethodPost, "/api/trips", adminToken, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	trip := decode(s.t, w)["trip"].(map[string]any)
	return int64(trip["id"].(float64))
}

func bookBody(tripID int64, seat int) gin.H {
	return gin.H{
		"tripId":           tripID,
		"passengerName":    "Nimal Perera",
		"mobileNumber":     "0771234567",
		"email":            "nimal@example.com",
		"seatNumber":       seat,
		"boardingPlace":    "Colombo",
		"destinationPlace": "Kandy",
		"totalPrice":       1500,
	}
}

func payBody(bookingID int64, method string) gin.H {
	return gin.H{
		"bookingId":     bookingID,
		"paymentMethod": method,
		"cardDetails":   gin.H{"nameOnCard": "N Perera", "cardNumber": "4111111111111111", "expiryDate": "12/29", "cvv": "123"},
	}
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthGuards(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/commuters/book-seat", "", bookBody(1, 5))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/commuters/book-seat", "garbage", bookBody(1, 5))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	op := s.signup("op@bus.lk", "Operator")
	w = s.do(http.MethodPost, "/api/commuters/book-seat", op, bookBody(1, 5))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/trips", op, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": "op@bus.lk", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCommuterLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@bus.lk", "adminpass")
	commuter := s.signup("rider@bus.lk", "Commuter")
	rival := s.signup("rival@bus.lk", "")
	tripID := s.createTrip(admin, 0)

	w := s.do(http.MethodGet, "/api/commuters/trips/"+itoa(tripID)+"/seats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	matrix := decode(t, w)["seatMatrix"].([]any)
	assert.Len(t, matrix, 10)

	w = s.do(http.MethodPost, "/api/commuters/book-seat", commuter, bookBody(tripID, 5))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	booking := decode(t, w)["booking"].(map[string]any)
	bookingID := int64(booking["id"].(float64))
	assert.Equal(t, "Confirmed", booking["status"])
	assert.NotContains(t, booking, "bookingToken")

	w = s.do(http.MethodPost, "/api/commuters/book-seat", rival, bookBody(tripID, 5))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Seat not available", decode(t, w)["message"])

	w = s.do(http.MethodPost, "/api/commuters/payments", commuter, payBody(bookingID, "Bitcoin"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/commuters/payments", commuter, payBody(bookingID, models.MethodAmericanExpress))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode(t, w)
	token := paid["bookingToken"].(string)
	assert.Len(t, token, 64)
	payment := paid["payment"].(map[string]any)
	assert.Equal(t, "Successful", payment["status"])
	assert.NotContains(t, payment["cardDetails"], "cvv")

	w = s.do(http.MethodPost, "/api/commuters/payments", commuter, payBody(bookingID, models.MethodAmericanExpress))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/commuters/bookings/"+itoa(bookingID)+"/e-ticket", commuter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = s.do(http.MethodPut, "/api/commuters/cancel-booking", commuter, gin.H{"bookingId": bookingID, "bookingToken": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid booking token", decode(t, w)["message"])

	w = s.do(http.MethodPut, "/api/commuters/cancel-booking", rival, gin.H{"bookingId": bookingID, "bookingToken": token})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/commuters/cancel-booking", commuter, gin.H{"bookingId": bookingID, "bookingToken": token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Canceled", decode(t, w)["booking"].(map[string]any)["status"])

	w = s.do(http.MethodPut, "/api/commuters/cancel-booking", commuter, gin.H{"bookingId": bookingID, "bookingToken": token})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/commuters/my-bookings", commuter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bookings"], 1)

	w = s.do(http.MethodGet, "/api/trips/"+itoa(tripID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	av := decode(t, w)["seatAvailability"].(map[string]any)
	assert.Contains(t, av["available"], float64(5))
}

func TestAdminAndOperatorRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@bus.lk", "adminpass")
	commuter := s.signup("rider@bus.lk", "Commuter")
	op := s.signup("op@bus.lk", "Operator")
	stranger := s.signup("op2@bus.lk", "Operator")

	opUser, err := s.store.GetUserByEmail(context.Background(), "op@bus.lk")
	require.NoError(t, err)
	tripID := s.createTrip(admin, opUser.ID)

	w := s.do(http.MethodPost, "/api/commuters/book-seat", commuter, bookBody(tripID, 7))
	require.Equal(t, http.StatusOK, w.Code)
	bookingID := int64(decode(t, w)["booking"].(map[string]any)["id"].(float64))

	w = s.do(http.MethodGet, "/api/bookings/trips/"+itoa(tripID)+"/bookings", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bookings"], 1)

	w = s.do(http.MethodGet, "/api/bookings/trips/999/bookings", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/operators/bookings", op, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bookings"], 1)

	w = s.do(http.MethodPost, "/api/operators/cancel-trip", stranger, gin.H{"tripId": tripID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/bookings/bookings/"+itoa(bookingID)+"/cancel", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/bookings/bookings/"+itoa(bookingID)+"/cancel", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/operators/cancel-trip", op, gin.H{"tripId": tripID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(models.TripCancelled), decode(t, w)["trip"].(map[string]any)["status"])

	w = s.do(http.MethodPost, "/api/commuters/book-seat", commuter, bookBody(tripID, 8))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
