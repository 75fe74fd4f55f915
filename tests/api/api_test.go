//go:build api

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseURL = getEnv("API_BASE_URL", "http://localhost:8080")

// TestAPI_FullFlow walks a reservation from shop setup to rating against a
// running server.
func TestAPI_FullFlow(t *testing.T) {
	waitForService(t)

	run := uuid.NewString()[:8]
	merchant := register(t, "merchant-"+run+"@example.com", true)
	customer := register(t, "customer-"+run+"@example.com", false)
	other := register(t, "other-"+run+"@example.com", false)

	var subcategories []map[string]any
	resp := do(t, http.MethodGet, "/api/subcategories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &subcategories)
	if len(subcategories) == 0 {
		t.Skip("no subcategories seeded; create one as an operator first")
	}

	var shopID, slotID, bookingID, ratingID string
	date := nextWeekAt(19)

	t.Run("Step1_CreateShop", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/api/shops", merchant, map[string]any{
			"subcategory_id":       subcategories[0]["id"],
			"name":                 "La Esquina " + run,
			"shift_type":           "DOUBLE",
			"average_stay_minutes": 90,
			"capacity":             4,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var shop map[string]any
		decodeJSON(t, resp, &shop)
		shopID = shop["id"].(string)
		t.Logf("shop %s slug=%v", shopID, shop["slug"])
	})

	t.Run("Step2_CreateSlot", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/api/shops/"+shopID+"/slots", merchant, map[string]any{
			"start_time": "18:00",
			"end_time":   "22:00",
			"capacity":   4,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var slot map[string]any
		decodeJSON(t, resp, &slot)
		slotID = slot["id"].(string)
	})

	t.Run("Step3_CreateBooking", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/api/bookings", customer, map[string]any{
			"shop_id":        shopID,
			"booked_slot_id": slotID,
			"date":           date,
			"guests":         3,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var booking map[string]any
		decodeJSON(t, resp, &booking)
		bookingID = booking["id"].(string)
		assert.Equal(t, "PENDING", booking["status"])
		assert.Len(t, booking["booking_code"], 4)
	})

	t.Run("Step4_OverbookingRejected", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/api/bookings", other, map[string]any{
			"shop_id":        shopID,
			"booked_slot_id": slotID,
			"date":           date,
			"guests":         2,
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		var errResp map[string]string
		decodeJSON(t, resp, &errResp)
		assert.Contains(t, errResp["message"], "fully booked")
	})

	t.Run("Step5_OtherCustomerCannotRead", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/api/bookings/"+bookingID, other, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Step6_MerchantConfirms", func(t *testing.T) {
		resp := do(t, http.MethodPatch, "/api/bookings/"+bookingID, merchant, map[string]any{
			"status": "CONFIRMED",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var booking map[string]any
		decodeJSON(t, resp, &booking)
		assert.Equal(t, "CONFIRMED", booking["status"])
	})

	t.Run("Step7_RateVisit", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/api/ratings?booking_id="+bookingID, customer, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var ratings []map[string]any
		decodeJSON(t, resp, &ratings)
		require.Len(t, ratings, 1)
		assert.Equal(t, "PENDING", ratings[0]["status"])
		ratingID = ratings[0]["id"].(string)

		resp = do(t, http.MethodPatch, "/api/ratings/"+ratingID, customer, map[string]any{
			"rating":  4,
			"comment": "muy bueno",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = do(t, http.MethodGet, "/api/shops/"+shopID+"/rating-summary", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var summary map[string]any
		decodeJSON(t, resp, &summary)
		assert.Equal(t, float64(4), summary["average"])
		assert.Equal(t, float64(1), summary["count"])
	})

	t.Run("Step8_CancelFreesSeats", func(t *testing.T) {
		resp := do(t, http.MethodPatch, "/api/bookings/"+bookingID, customer, map[string]any{
			"status": "CANCELLED",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = do(t, http.MethodGet,
			fmt.Sprintf("/api/slots/%s/availability?date=%s", slotID, date.Format(time.DateOnly)), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var avail map[string]any
		decodeJSON(t, resp, &avail)
		assert.Equal(t, float64(4), avail["remaining"])
	})
}

// Helper functions

func waitForService(t *testing.T) {
	t.Log("waiting for reservas-api to be ready")
	for i := 0; i < 30; i++ {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatal("service did not become ready in time")
}

// register creates an account and logs it in, returning the access token.
func register(t *testing.T, email string, merchant bool) string {
	t.Helper()
	resp := do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"name":     email,
		"password": "s3cret-password",
		"merchant": merchant,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &auth)
	require.NotEmpty(t, auth.AccessToken)
	return auth.AccessToken
}

func do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func nextWeekAt(hour int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
