package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GatewayOptions configures the HTTP push gateway client.
type GatewayOptions struct {
	URL           string
	Key           string
	Timeout       time.Duration
	RatePerSecond float64
}

// Gateway posts multicast requests to an HTTP push gateway.
type Gateway struct {
	log     *zap.SugaredLogger
	client  *http.Client
	url     string
	key     string
	limiter *rate.Limiter
}

// NewGateway builds a gateway client. A non-positive rate disables pacing.
func NewGateway(opts GatewayOptions, log *zap.SugaredLogger) *Gateway {
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		log:     log.Named("push.gateway"),
		client:  &http.Client{Timeout: timeout},
		url:     opts.URL,
		key:     opts.Key,
		limiter: rate.NewLimiter(limit, 1),
	}
}

type multicastRequest struct {
	Tokens       []string          `json:"tokens"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type multicastResponse struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
	Responses    []struct {
		Success bool        `json:"success"`
		Error   *TokenError `json:"error,omitempty"`
	} `json:"responses"`
}

// SendMulticast sends msg to tokens in one request.
func (g *Gateway) SendMulticast(ctx context.Context, tokens []string, msg Message) (BatchResponse, error) {
	if len(tokens) == 0 {
		return BatchResponse{}, nil
	}
	if len(tokens) > MaxBatch {
		return BatchResponse{}, fmt.Errorf("multicast of %d tokens exceeds %d", len(tokens), MaxBatch)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return BatchResponse{}, err
	}

	payload, err := json.Marshal(multicastRequest{
		Tokens:       tokens,
		Notification: notification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	})
	if err != nil {
		return BatchResponse{}, fmt.Errorf("encode multicast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return BatchResponse{}, fmt.Errorf("build multicast request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if g.key != "" {
		req.Header.Set("Authorization", "key="+g.key)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return BatchResponse{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return BatchResponse{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 300:
		return BatchResponse{}, fmt.Errorf("multicast rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded multicastResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return BatchResponse{}, fmt.Errorf("decode multicast response: %w", err)
	}
	if len(decoded.Responses) != len(tokens) {
		return BatchResponse{}, fmt.Errorf("multicast response has %d results for %d tokens", len(decoded.Responses), len(tokens))
	}

	out := BatchResponse{
		SuccessCount: decoded.SuccessCount,
		FailureCount: decoded.FailureCount,
		Responses:    make([]Result, len(tokens)),
	}
	for i, r := range decoded.Responses {
		out.Responses[i] = Result{Token: tokens[i]}
		if !r.Success {
			if r.Error == nil {
				r.Error = &TokenError{Code: "unknown", Message: "delivery failed"}
			}
			out.Responses[i].Err = r.Error
		}
	}

	g.log.Debugw("multicast sent", "request_id", requestID, "tokens", len(tokens), "success", out.SuccessCount, "failure", out.FailureCount)
	return out, nil
}
