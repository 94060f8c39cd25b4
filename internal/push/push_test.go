package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsTokenInvalid(t *testing.T) {
	cases := []struct {
		name string
		err  *TokenError
		want bool
	}{
		{"nil", nil, false},
		{"invalid argument", &TokenError{Code: "invalid-argument"}, true},
		{"prefixed not registered", &TokenError{Code: "messaging/registration-token-not-registered"}, true},
		{"quota", &TokenError{Code: "messaging/quota-exceeded"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsTokenInvalid(tc.err))
		})
	}
}

func TestBatches(t *testing.T) {
	tokens := make([]string, 1001)
	for i := range tokens {
		tokens[i] = "t"
	}
	got := Batches(tokens, 500)
	require.Len(t, got, 3)
	require.Len(t, got[0], 500)
	require.Len(t, got[2], 1)

	require.Empty(t, Batches(nil, 500))
	require.Len(t, Batches(tokens, 10000), 3)
}

func TestGatewaySendMulticast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key=secret", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req multicastRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"good", "bad"}, req.Tokens)
		require.Equal(t, "WAKE_UP_CHALLENGE", req.Data["type"])

		_, _ = w.Write([]byte(`{"successCount":1,"failureCount":1,"responses":[
			{"success":true},
			{"success":false,"error":{"code":"messaging/registration-token-not-registered","message":"gone"}}]}`))
	}))
	defer srv.Close()

	g := NewGateway(GatewayOptions{URL: srv.URL, Key: "secret"}, zap.NewNop().Sugar())
	resp, err := g.SendMulticast(context.Background(), []string{"good", "bad"}, Message{
		Title: "wake", Body: "up", Data: map[string]string{"type": "WAKE_UP_CHALLENGE"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.SuccessCount)
	require.Nil(t, resp.Responses[0].Err)
	require.Equal(t, "bad", resp.Responses[1].Token)
	require.True(t, IsTokenInvalid(resp.Responses[1].Err))
}

func TestGatewayUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGateway(GatewayOptions{URL: srv.URL}, zap.NewNop().Sugar())
	_, err := g.SendMulticast(context.Background(), []string{"a"}, Message{})
	require.ErrorIs(t, err, ErrUnavailable)

	srv.Close()
	_, err = g.SendMulticast(context.Background(), []string{"a"}, Message{})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGatewayRejectsOversizedBatch(t *testing.T) {
	g := NewGateway(GatewayOptions{URL: "http://127.0.0.1:0"}, zap.NewNop().Sugar())
	_, err := g.SendMulticast(context.Background(), make([]string, MaxBatch+1), Message{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnavailable)
}

func TestLogSender(t *testing.T) {
	resp, err := NewLogSender(zap.NewNop().Sugar()).SendMulticast(context.Background(), []string{"a", "b"}, Message{})
	require.NoError(t, err)
	require.Equal(t, 2, resp.SuccessCount)
	require.Len(t, resp.Responses, 2)
}
