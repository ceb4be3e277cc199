package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *GroqService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewGroqService("test-key", "llama-test")
	svc.baseURL = server.URL
	return svc
}

func TestAsk_RespostaSimples(t *testing.T) {
	var got groqRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  ☕ Temos 40 unidades.  "}},
			},
		})
	})

	answer, err := svc.Ask(context.Background(), "quantos cafés temos?", "Café A: 40 un")

	require.NoError(t, err)
	assert.Equal(t, "☕ Temos 40 unidades.", answer, "a resposta volta sem espaços das pontas")

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Café A: 40 un", "o resumo de estoque entra no system prompt")
	assert.Equal(t, "quantos cafés temos?", got.Messages[1].Content)
}

func TestAsk_SemChave(t *testing.T) {
	svc := NewGroqService("", "llama-test")
	_, err := svc.Ask(context.Background(), "oi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestAsk_HTTPNaoOK(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "rate_limit", "message": "slow down"},
		})
	})

	_, err := svc.Ask(context.Background(), "oi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit")
}

func TestAsk_RespostaVazia(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := svc.Ask(context.Background(), "oi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vazia")
}

func TestAsk_ContextoExpirado(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Ask(ctx, "oi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout ou cancelamento")
}
