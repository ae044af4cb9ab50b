package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/fileassist/internal/adapters/llm"
	"github.com/bnema/fileassist/internal/domain"
	"github.com/bnema/fileassist/internal/nlu"
	"github.com/bnema/fileassist/internal/ports"
	"go.uber.org/zap"
)

const (
	ProviderName = "openai"

	DefaultRequestTimeout = 300 * time.Second
	DefaultCheckTimeout   = 10 * time.Second

	chatPath   = "/chat/completions"
	modelsPath = "/models"
)

type Options struct {
	BaseURL        string
	Model          string
	APIKey         string
	RequestTimeout time.Duration
	CheckTimeout   time.Duration
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// Provider talks to any OpenAI-compatible chat completions endpoint
// (llama.cpp server, LM Studio, vLLM, the OpenAI API).
type Provider struct {
	baseURL        string
	model          string
	apiKey         string
	requestTimeout time.Duration
	checkTimeout   time.Duration
	http           *http.Client
	logger         *zap.Logger
}

var _ ports.LLMProvider = (*Provider)(nil)

func New(opts Options) *Provider {
	baseURL := llm.NormalizeBaseURL(opts.BaseURL)
	if baseURL != "" && !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = DefaultCheckTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = llm.NewHTTPClient()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Provider{
		baseURL:        baseURL,
		model:          strings.TrimSpace(opts.Model),
		apiKey:         opts.APIKey,
		requestTimeout: opts.RequestTimeout,
		checkTimeout:   opts.CheckTimeout,
		http:           opts.HTTPClient,
		logger:         opts.Logger.With(zap.String("provider", ProviderName), zap.String("model", opts.Model)),
	}
}

func (p *Provider) Name() string {
	return ProviderName
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string    `json:"model"`
	Messages       []message `json:"messages"`
	ResponseFormat any       `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *Provider) CheckConnection(ctx context.Context) ports.ConnectionStatus {
	if p.baseURL == "" {
		return ports.ConnectionStatus{Details: "llm.base_url is not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, p.checkTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+modelsPath, nil)
	if err != nil {
		return ports.ConnectionStatus{Details: fmt.Sprintf("create request: %v", err)}
	}
	p.authorize(request)

	resp, err := p.http.Do(request)
	if err != nil {
		return ports.ConnectionStatus{Details: fmt.Sprintf("cannot reach %s: %v", p.baseURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.ConnectionStatus{Details: fmt.Sprintf("%s answered %v", p.baseURL, llm.StatusError(resp))}
	}

	var models modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return ports.ConnectionStatus{ConnectionOK: true, Details: fmt.Sprintf("decode model list: %v", err)}
	}

	for _, model := range models.Data {
		if model.ID == p.model {
			return ports.ConnectionStatus{ConnectionOK: true, ModelOK: true, Details: fmt.Sprintf("connected to %s, model %s is available", p.baseURL, p.model)}
		}
	}

	return ports.ConnectionStatus{ConnectionOK: true, Details: fmt.Sprintf("model %q is not served by %s", p.model, p.baseURL)}
}

func (p *Provider) ExtractIntent(ctx context.Context, userText string, session *domain.SessionContext) domain.NLUResult {
	raw, err := p.chat(ctx, nlu.BuildIntentPrompt(userText, session), true)
	if err != nil {
		p.logger.Warn("intent extraction failed", zap.Error(err))
		return nlu.TransportFailure(err)
	}

	return nlu.ParseIntent(raw, ProviderName)
}

func (p *Provider) InvokeForContent(ctx context.Context, instruction string, content string) (string, error) {
	raw, err := p.chat(ctx, nlu.BuildContentPrompt(instruction, content), false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (p *Provider) CheckContentMatch(ctx context.Context, content string, criteria string) (bool, error) {
	raw, err := p.chat(ctx, nlu.BuildContentMatchPrompt(content, criteria), false)
	if err != nil {
		return false, err
	}
	return nlu.ParseYesNo(raw), nil
}

// GenerateOrganizationPlan does not force json_object mode: the plan root is
// an array.
func (p *Provider) GenerateOrganizationPlan(ctx context.Context, itemsSummary string, goal string, basePath string) ([]domain.OrganizationAction, error) {
	raw, err := p.chat(ctx, nlu.BuildOrganizationPrompt(itemsSummary, goal, basePath), false)
	if err != nil {
		return nil, err
	}
	return nlu.ParsePlan(raw)
}

func (p *Provider) authorize(request *http.Request) {
	if p.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}

func (p *Provider) chat(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if p.baseURL == "" {
		return "", errors.New("llm base URL is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	body := chatRequest{
		Model:    p.model,
		Messages: []message{{Role: "user", Content: prompt}},
	}
	if jsonMode {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+chatPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	p.authorize(request)

	resp, err := p.http.Do(request)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", llm.StatusError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("response missing choices")
	}

	return decoded.Choices[0].Message.Content, nil
}
