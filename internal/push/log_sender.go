package push

import (
	"context"

	"go.uber.org/zap"
)

// LogSender logs messages instead of delivering them. Used when no gateway is configured.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender builds a LogSender.
func NewLogSender(log *zap.SugaredLogger) *LogSender {
	return &LogSender{log: log.Named("push.log")}
}

// SendMulticast reports every token as delivered.
func (s *LogSender) SendMulticast(_ context.Context, tokens []string, msg Message) (BatchResponse, error) {
	out := BatchResponse{SuccessCount: len(tokens), Responses: make([]Result, len(tokens))}
	for i, t := range tokens {
		out.Responses[i] = Result{Token: t}
	}
	s.log.Infow("notification", "title", msg.Title, "tokens", len(tokens))
	return out, nil
}
