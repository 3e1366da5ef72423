package payments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ticket-pesa/ticket_pesa/internal/config"
)

func TestDarajaGatewaySTKPush(t *testing.T) {
	fixed := time.Date(2023, 6, 15, 10, 20, 30, 0, time.UTC)

	var pushBody stkPushBody
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Errorf("unexpected basic auth: %s %s %v", user, pass, ok)
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&pushBody); err != nil {
			t.Errorf("decode push body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"MerchantRequestID":   "m_1",
			"CheckoutRequestID":   "ws_1",
			"ResponseCode":        "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage":     "Success. Request accepted for processing",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gateway := NewDarajaGateway(config.MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Passkey:        "passkey",
		Shortcode:      "174379",
		CallbackURL:    "https://example.com/callback",
		BaseURL:        srv.URL,
	})
	gateway.now = func() time.Time { return fixed }

	ack, err := gateway.STKPush(context.Background(), STKPushInput{
		PhoneNumber: "254712345678",
		Amount:      500,
		Reference:   "TKT-1",
		Description: "Payment for TKT-1",
	})
	if err != nil {
		t.Fatalf("stk push: %v", err)
	}
	if ack.CheckoutRequestID != "ws_1" || ack.MerchantRequestID != "m_1" {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	if pushBody.Timestamp != "20230615102030" {
		t.Fatalf("unexpected timestamp: %s", pushBody.Timestamp)
	}
	wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + "20230615102030"))
	if pushBody.Password != wantPassword {
		t.Fatalf("unexpected password: %s", pushBody.Password)
	}
	if pushBody.PartyA != "254712345678" || pushBody.PartyB != "174379" || pushBody.PhoneNumber != "254712345678" {
		t.Fatalf("unexpected parties: %+v", pushBody)
	}
	if pushBody.TransactionType != "CustomerPayBillOnline" || pushBody.Amount != 500 {
		t.Fatalf("unexpected push body: %+v", pushBody)
	}
	if pushBody.CallBackURL != "https://example.com/callback" || pushBody.AccountReference != "TKT-1" {
		t.Fatalf("unexpected callback wiring: %+v", pushBody)
	}
}

func TestDarajaGatewayTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	gateway := NewDarajaGateway(config.MpesaConfig{BaseURL: srv.URL})
	if _, err := gateway.STKPush(context.Background(), STKPushInput{PhoneNumber: "254712345678", Amount: 100}); err == nil {
		t.Fatal("expected error when the token endpoint rejects")
	}
}
