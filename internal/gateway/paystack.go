// Package gateway contains the Paystack payment provider adapter. It
// is a thin, untrusting HTTP client: anything other than a well-formed
// success envelope becomes an error, never a payment verdict.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zumagrand/booking-api/internal/booking"
)

// DefaultBaseURL is the production Paystack API endpoint.
const DefaultBaseURL = "https://api.paystack.co"

// Paystack implements booking.Gateway against the Paystack
// transaction API.
type Paystack struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewPaystack returns a Paystack adapter. baseURL may be empty to use
// the production endpoint; timeout bounds every call to the provider.
func NewPaystack(secretKey, baseURL string, timeout time.Duration) *Paystack {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Paystack{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// envelope is the outer shape of every Paystack response. Status is
// the envelope health flag, not the payment outcome.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status    string `json:"status"` // "success", "failed", "abandoned", ...
	Reference string `json:"reference"`
}

// Initialize opens a transaction for the given reference and returns
// the authorization URL the guest must visit. Paystack expects the
// amount in kobo, so the naira amount is multiplied by 100 here.
func (p *Paystack) Initialize(ctx context.Context, init booking.GatewayInit) (*booking.GatewayAuthorization, error) {
	payload := map[string]interface{}{
		"email":        init.Email,
		"amount":       init.Amount * 100,
		"reference":    init.Reference,
		"callback_url": init.CallbackURL,
		"metadata":     init.Metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	env, err := p.do(req)
	if err != nil {
		return nil, err
	}
	var data initializeData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: malformed initialize response", booking.ErrGateway)
	}
	return &booking.GatewayAuthorization{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}, nil
}

// Verify asks Paystack for the true outcome of the transaction with
// the given reference. Only data.status == "success" maps to a
// successful payment; any other value is a failed payment, and a
// missing status field is a gateway error.
func (p *Paystack) Verify(ctx context.Context, reference string) (*booking.GatewayVerification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	env, err := p.do(req)
	if err != nil {
		return nil, err
	}
	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Status == "" {
		return nil, fmt.Errorf("%w: malformed verify response", booking.ErrGateway)
	}
	return &booking.GatewayVerification{
		Success:          data.Status == "success",
		GatewayReference: data.Reference,
	}, nil
}

// do executes the request and decodes the outer envelope, mapping
// timeouts and unhealthy envelopes to the booking error taxonomy.
func (p *Paystack) do(req *http.Request) (*envelope, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, booking.ErrGatewayTimeout
		}
		return nil, fmt.Errorf("%w: %v", booking.ErrGateway, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: undecodable response (http %d)", booking.ErrGateway, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", booking.ErrGateway, msg)
	}
	return &env, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}
