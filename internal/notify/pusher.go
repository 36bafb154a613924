package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Audience selects who an alert goes to.
type Audience string

const (
	AudienceVendor    Audience = "vendor"
	AudienceLogistics Audience = "logistics"
)

// Alert is one push notification request for the external gateway.
type Alert struct {
	Audience Audience `json:"audience"`
	Vendor   string   `json:"vendor,omitempty"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	OrderID  string   `json:"order_id"`
}

// Pusher delivers alerts. The consumer only depends on this.
type Pusher interface {
	Push(ctx context.Context, alert Alert) error
}

// GatewayPusher posts alerts to the push gateway behind a circuit breaker so
// a dead gateway doesn't stall the consumer loop on every message.
type GatewayPusher struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewGatewayPusher(url string) *GatewayPusher {
	settings := gobreaker.Settings{
		Name:    "push-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &GatewayPusher{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (g *GatewayPusher) Push(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	_, err = g.breaker.Execute(func() (struct{}, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
		if reqErr != nil {
			return struct{}{}, reqErr
		}
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := g.client.Do(req)
		if doErr != nil {
			return struct{}{}, doErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return struct{}{}, fmt.Errorf("push gateway returned %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	return err
}
