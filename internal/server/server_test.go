package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/push"
	"github.com/dukerupert/bywater/internal/store"
)

const testAccessKey = "test-access-key"

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// An in-memory SQLite database exists per connection; keep the pool at
	// one so every query sees the migrated schema.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	households := store.NewHouseholdStore(db)
	if _, err := households.Create("Baggins", auth.HashKey(testAccessKey)); err != nil {
		t.Fatalf("create household: %v", err)
	}

	srv := New(db, push.Config{}, slog.Default())
	return srv.Router()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Access-Key", testAccessKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLogin(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(fmt.Sprintf(`{"access_key": %q}`, testAccessKey)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Success       bool   `json:"success"`
		HouseholdName string `json:"household_name"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.HouseholdName != "Baggins" {
		t.Errorf("response = %+v", resp)
	}
}

func TestLoginWrongKey(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"access_key": "wrong"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// A wrong key is a 200 with success false, not a 401, so clients can
	// tell "wrong key" apart from "session expired".
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Success {
		t.Error("expected success false for a wrong key")
	}
}

func TestProtectedRoutesRequireKey(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest("GET", "/api/shopping", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestShoppingFlow(t *testing.T) {
	handler := setupServer(t)

	// Add with a custom name creates the product implicitly
	rec := doJSON(t, handler, "POST", "/api/shopping", `{"custom_name": "Milk", "quantity": "2"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	var item struct {
		ID        int64  `json:"id"`
		ProductID int64  `json:"product_id"`
		Quantity  string `json:"quantity"`
		Checked   bool   `json:"is_checked"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.Quantity != "2" || item.Checked {
		t.Errorf("item = %+v", item)
	}

	// The product landed in the catalog
	rec = doJSON(t, handler, "GET", "/api/products", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: status = %d", rec.Code)
	}
	var products []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	json.NewDecoder(rec.Body).Decode(&products)
	if len(products) != 1 || products[0].Name != "Milk" {
		t.Fatalf("products = %v", products)
	}

	// Adding the same product again is a conflict
	rec = doJSON(t, handler, "POST", "/api/shopping",
		fmt.Sprintf(`{"product_id": %d}`, item.ProductID))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate add: status = %d, want %d", rec.Code, http.StatusConflict)
	}

	// Check the item off
	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/shopping/%d/check", item.ID), `{"is_checked": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("check: status = %d: %s", rec.Code, rec.Body)
	}

	// Clear checked items
	rec = doJSON(t, handler, "POST", "/api/shopping/clear", `{"keep_unchecked": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: status = %d", rec.Code)
	}
	var cleared struct {
		Cleared int64 `json:"cleared"`
	}
	json.NewDecoder(rec.Body).Decode(&cleared)
	if cleared.Cleared != 1 {
		t.Errorf("cleared = %d, want 1", cleared.Cleared)
	}

	// The list is empty again, served as an empty array
	rec = doJSON(t, handler, "GET", "/api/shopping", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty list body = %q, want []", body)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	handler := setupServer(t)

	// Unknown item → 404
	rec := doJSON(t, handler, "PUT", "/api/shopping/9999/check", `{"is_checked": true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown item: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// Missing identification → 400
	rec = doJSON(t, handler, "POST", "/api/shopping", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty add: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Referenced product cannot be deleted → 409
	rec = doJSON(t, handler, "POST", "/api/shopping", `{"custom_name": "Milk"}`)
	var item struct {
		ProductID int64 `json:"product_id"`
	}
	json.NewDecoder(rec.Body).Decode(&item)

	rec = doJSON(t, handler, "DELETE", fmt.Sprintf("/api/products/%d", item.ProductID), "")
	if rec.Code != http.StatusConflict {
		t.Errorf("delete referenced product: status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestPushRoutesAbsentWithoutVAPID(t *testing.T) {
	handler := setupServer(t)

	// push.Config was empty, so push routes are not registered
	rec := doJSON(t, handler, "GET", "/api/push/vapid-key", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
