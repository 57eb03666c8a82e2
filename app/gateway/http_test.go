package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateOrderSendsMinorUnitsWithBasicAuth(t *testing.T) {
	var received createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_id" || pass != "key_secret" {
			t.Fatalf("expected basic auth credentials, got %q/%q", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(createOrderResponse{ID: "order_1", Amount: received.Amount, Currency: received.Currency})
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, "key_id", "key_secret", 5*time.Second)
	order, err := svc.CreateOrder(context.Background(), "cs-11", 399.2, "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.Amount != 39920 {
		t.Fatalf("expected 39920 minor units, got %d", received.Amount)
	}
	if received.Receipt != "cs-11" {
		t.Fatalf("expected receipt cs-11, got %s", received.Receipt)
	}
	if order.OrderID != "order_1" || order.Amount != 399.2 || order.Currency != "INR" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"auth failed"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, "key_id", "key_secret", 5*time.Second)
	if _, err := svc.CreateOrder(context.Background(), "cs-11", 100, "INR"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestVerifySignature(t *testing.T) {
	svc := NewHTTPService("http://gateway", "key_id", "key_secret", time.Second)

	mac := hmac.New(sha256.New, []byte("key_secret"))
	mac.Write([]byte("order_1|pay_1"))
	signature := hex.EncodeToString(mac.Sum(nil))

	if !svc.VerifySignature("order_1", "pay_1", signature) {
		t.Fatal("expected valid signature to verify")
	}
	if svc.VerifySignature("order_1", "pay_1", "tampered") {
		t.Fatal("expected tampered signature to fail")
	}
	if svc.VerifySignature("order_1", "pay_2", signature) {
		t.Fatal("expected signature for another payment to fail")
	}
}

func TestMinorUnitConversion(t *testing.T) {
	if got := toMinorUnits(399.2); got != 39920 {
		t.Fatalf("expected 39920, got %d", got)
	}
	if got := fromMinorUnits(39920); got != 399.2 {
		t.Fatalf("expected 399.2, got %v", got)
	}
}
