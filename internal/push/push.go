// Package push delivers wake-up notifications to device tokens.
package push

import (
	"context"
	"errors"
	"strings"
)

// MaxBatch is the largest token list a single multicast may carry.
const MaxBatch = 500

// ErrUnavailable reports that the push transport could not be reached.
var ErrUnavailable = errors.New("push transport unavailable")

// Message is the notification payload shared by every token of a batch.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// TokenError is a per-token delivery failure.
type TokenError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *TokenError) Error() string {
	return e.Code + ": " + e.Message
}

// Result is the outcome for one token; Err is nil on delivery.
type Result struct {
	Token string
	Err   *TokenError
}

// BatchResponse mirrors the multicast answer of the transport.
type BatchResponse struct {
	SuccessCount int
	FailureCount int
	Responses    []Result
}

// Sender sends one message to many tokens.
type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, msg Message) (BatchResponse, error)
}

// IsTokenInvalid reports whether a token should be forgotten.
func IsTokenInvalid(err *TokenError) bool {
	if err == nil {
		return false
	}
	switch strings.TrimPrefix(err.Code, "messaging/") {
	case "invalid-argument", "registration-token-not-registered":
		return true
	default:
		return false
	}
}

// Batches splits tokens into chunks of at most size.
func Batches(tokens []string, size int) [][]string {
	if size <= 0 || size > MaxBatch {
		size = MaxBatch
	}
	out := make([][]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := min(start+size, len(tokens))
		out = append(out, tokens[start:end])
	}
	return out
}
