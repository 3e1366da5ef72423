package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-pesa/ticket_pesa/internal/config"
)

const darajaTimestampLayout = "20060102150405"

// STKPushInput carries the details for one push-payment request. PhoneNumber
// must already be normalized to 254... form.
type STKPushInput struct {
	PhoneNumber string
	Amount      int64
	Reference   string
	Description string
}

// STKPushAck is the provider's synchronous acknowledgment of a push request.
// The actual outcome arrives later through the callback.
type STKPushAck struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseDescription string
	CustomerMessage     string
}

// Gateway represents the connector to the external mobile-money provider.
// There is deliberately no reversal method: refunds in this system are
// internal ledger credits only.
type Gateway interface {
	STKPush(ctx context.Context, input STKPushInput) (STKPushAck, error)
}

// DarajaGateway talks to the Safaricom Daraja sandbox/production API. A fresh
// OAuth token is fetched for every push; tokens are short-lived and the call
// volume here does not justify a cache.
type DarajaGateway struct {
	cfg    config.MpesaConfig
	client *http.Client
	now    func() time.Time
}

// NewDarajaGateway builds the HTTP gateway from explicit configuration.
func NewDarajaGateway(cfg config.MpesaConfig) *DarajaGateway {
	return &DarajaGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (g *DarajaGateway) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.cfg.BaseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.cfg.ConsumerKey, g.cfg.ConsumerSecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access token")
	}
	return tok.AccessToken, nil
}

// password derives the request password: base64(shortcode + passkey + timestamp).
func (g *DarajaGateway) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(g.cfg.Shortcode + g.cfg.Passkey + timestamp))
}

type stkPushBody struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush requests a push payment on the customer's phone and returns the
// provider correlation identifiers.
func (g *DarajaGateway) STKPush(ctx context.Context, input STKPushInput) (STKPushAck, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return STKPushAck{}, err
	}

	timestamp := g.now().UTC().Format(darajaTimestampLayout)
	body := stkPushBody{
		BusinessShortCode: g.cfg.Shortcode,
		Password:          g.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            input.Amount,
		PartyA:            input.PhoneNumber,
		PartyB:            g.cfg.Shortcode,
		PhoneNumber:       input.PhoneNumber,
		CallBackURL:       g.cfg.CallbackURL,
		AccountReference:  input.Reference,
		TransactionDesc:   input.Description,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return STKPushAck{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(payload))
	if err != nil {
		return STKPushAck{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return STKPushAck{}, fmt.Errorf("stk push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return STKPushAck{}, fmt.Errorf("stk push endpoint returned %d: %s", resp.StatusCode, raw)
	}

	var ack stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return STKPushAck{}, fmt.Errorf("decode stk push response: %w", err)
	}

	return STKPushAck{
		MerchantRequestID:   ack.MerchantRequestID,
		CheckoutRequestID:   ack.CheckoutRequestID,
		ResponseDescription: ack.ResponseDescription,
		CustomerMessage:     ack.CustomerMessage,
	}, nil
}

// StaticGateway simulates a successful provider integration for tests and
// local development without Daraja credentials.
type StaticGateway struct {
	mu       sync.Mutex
	Ack      STKPushAck
	Err      error
	Requests []STKPushInput
}

// STKPush records the request and returns the configured ack, generating
// synthetic correlation ids when none are set.
func (g *StaticGateway) STKPush(_ context.Context, input STKPushInput) (STKPushAck, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return STKPushAck{}, g.Err
	}
	g.Requests = append(g.Requests, input)
	ack := g.Ack
	if ack.CheckoutRequestID == "" {
		ack.CheckoutRequestID = "ws_CO_" + uuid.NewString()
	}
	if ack.MerchantRequestID == "" {
		ack.MerchantRequestID = uuid.NewString()
	}
	if ack.CustomerMessage == "" {
		ack.CustomerMessage = "Success. Request accepted for processing"
	}
	return ack, nil
}
