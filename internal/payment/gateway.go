package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ============================================
// Payment Gateway
// ============================================

var ErrDeclined = errors.New("payment declined")

// Gateway is the external card/bank charge collaborator. Charge places
// a hold for the full client total; Refund returns it. Both must come
// back within the configured timeout. A gateway that hangs is treated
// as a decline so escrow is never left ambiguous.
type Gateway interface {
	Charge(ctx context.Context, clientID string, amount int64) (ref string, err error)
	Refund(ctx context.Context, ref string, amount int64) error
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type httpGateway struct {
	cfg    Config
	client *http.Client
}

func NewHTTPGateway(cfg Config) Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &httpGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chargeRequest struct {
	ClientID string `json:"client_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type chargeResponse struct {
	Ref    string `json:"ref"`
	Status string `json:"status"`
}

func (g *httpGateway) Charge(ctx context.Context, clientID string, amount int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chargeRequest{ClientID: clientID, Amount: amount, Currency: "jpy"})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL+"/charges", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		// Timeouts and transport failures are declines: retrying here
		// risks a double charge, the caller compensates instead.
		log.Printf("[Gateway] ⚠️ Charge failed for client %s: %v", clientID, err)
		return "", ErrDeclined
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[Gateway] ⚠️ Charge declined for client %s: status %d", clientID, resp.StatusCode)
		return "", ErrDeclined
	}

	var cr chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", ErrDeclined
	}
	if cr.Status != "succeeded" {
		return "", ErrDeclined
	}
	return cr.Ref, nil
}

func (g *httpGateway) Refund(ctx context.Context, ref string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(map[string]interface{}{"ref": ref, "amount": amount})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL+"/refunds", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("refund request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refund failed: status %d", resp.StatusCode)
	}
	return nil
}

// ============================================
// In-memory gateway (development)
// ============================================

// memoryGateway approves every charge. Used when GATEWAY_URL is not
// configured so the development environment works end to end.
type memoryGateway struct{}

func NewMemoryGateway() Gateway {
	return &memoryGateway{}
}

func (g *memoryGateway) Charge(ctx context.Context, clientID string, amount int64) (string, error) {
	return "dev_" + uuid.New().String(), nil
}

func (g *memoryGateway) Refund(ctx context.Context, ref string, amount int64) error {
	return nil
}
