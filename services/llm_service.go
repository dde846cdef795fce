package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github/itish2003/legalrag/models"

	"google.golang.org/genai"
)

// Generator is the single generation capability the QA path depends on.
// Both the local Ollama adapter and the Gemini adapter implement it, so
// callers never branch on the concrete backend.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// Capabilities is the startup capability-probe result, resolved once in
// main and threaded through constructors instead of re-checked via globals.
type Capabilities struct {
	EmbeddingBackend  bool
	GenerationBackend bool
}

// ProbeOllama reports whether the Ollama API answers at baseURL.
func ProbeOllama(client *http.Client, baseURL string) bool {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// OllamaGenerator generates completions through the local Ollama API.
type OllamaGenerator struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaGenerator(client *http.Client, baseURL, model string) *OllamaGenerator {
	return &OllamaGenerator{httpClient: client, baseURL: baseURL, model: model}
}

// Generate implements Generator.
func (g *OllamaGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	reqBody, err := json.Marshal(models.OllamaGenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama generate api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp models.OllamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return ollamaResp.Response, nil
}

// GeminiGenerator generates completions through the Google Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	var systemInstruction *genai.Content
	if contents := genai.Text(systemPrompt); len(contents) > 0 {
		systemInstruction = contents[0]
	}

	session, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("could not start gemini chat session: %w", err)
	}

	result, err := session.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}
