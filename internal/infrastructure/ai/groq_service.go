// Package ai implementa o cliente de inferência sobre a API da Groq.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eoscafes/estoque-bot/internal/application/ports"
)

// Verificação em tempo de compilação de que GroqService implementa LLMService.
var _ ports.LLMService = (*GroqService)(nil)

const (
	groqChatCompletionsURL = "https://api.groq.com/openai/v1/chat/completions"

	groqSystemPrompt = "Você é o assistente inteligente da Eos Cafés Especiais. " +
		"Responda em português brasileiro, de forma curta e objetiva, " +
		"usando emojis de café quando fizer sentido. Utilize os dados de " +
		"estoque fornecidos a seguir sempre que uma pergunta envolver quantidades:\n"
)

// GroqService implementa LLMService usando o endpoint de chat completions
// compatível com OpenAI da Groq. Usa net/http puro; não precisa de SDK.
type GroqService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGroqService constrói o adaptador. model costuma ser
// "llama-3.3-70b-versatile". Chave vazia devolve erro descritivo na
// chamada, não panic.
func NewGroqService(apiKey, model string) *GroqService {
	return &GroqService{
		apiKey:  apiKey,
		model:   model,
		baseURL: groqChatCompletionsURL,
		httpClient: &http.Client{
			// Timeout de rede de 20 s; a máquina de conversa impõe ainda
			// um context.WithTimeout de 10 s por pergunta.
			Timeout: 20 * time.Second,
		},
	}
}

// ── Estruturas do protocolo de chat completions ───────────────────────────────

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []groqMessage `json:"messages"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Ask envia a pergunta com o resumo de estoque no system prompt e devolve
// o texto da primeira escolha.
func (s *GroqService) Ask(ctx context.Context, question, contextSummary string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("AI: GROQ_API_KEY não configurada")
	}

	payload := groqRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []groqMessage{
			{Role: "system", Content: groqSystemPrompt + contextSummary},
			{Role: "user", Content: question},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: criar HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout ou cancelamento: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: chamada HTTP falhou: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("AI: ler resposta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp groqResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return "", fmt.Errorf("AI: Groq error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return "", fmt.Errorf("AI: Groq HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var groqResp groqResponse
	if err := json.Unmarshal(rawBody, &groqResp); err != nil {
		return "", fmt.Errorf("AI: deserializar resposta: %w", err)
	}
	if len(groqResp.Choices) == 0 {
		return "", fmt.Errorf("AI: resposta vazia do modelo")
	}

	answer := strings.TrimSpace(groqResp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("AI: resposta vazia do modelo")
	}
	return answer, nil
}
