package ollama

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
	ProviderName = "ollama"

	DefaultBaseURL        = "http://localhost:11434"
	DefaultModel          = "llama3"
	DefaultRequestTimeout = 300 * time.Second
	DefaultCheckTimeout   = 10 * time.Second

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

type Options struct {
	BaseURL        string
	Model          string
	RequestTimeout time.Duration
	CheckTimeout   time.Duration
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

type Provider struct {
	baseURL        string
	model          string
	requestTimeout time.Duration
	checkTimeout   time.Duration
	http           *http.Client
	logger         *zap.Logger
}

var _ ports.LLMProvider = (*Provider)(nil)

func New(opts Options) *Provider {
	baseURL := llm.NormalizeBaseURL(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
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
		model:          model,
		requestTimeout: opts.RequestTimeout,
		checkTimeout:   opts.CheckTimeout,
		http:           opts.HTTPClient,
		logger:         opts.Logger.With(zap.String("provider", ProviderName), zap.String("model", model)),
	}
}

func (p *Provider) Name() string {
	return ProviderName
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

func (p *Provider) CheckConnection(ctx context.Context) ports.ConnectionStatus {
	ctx, cancel := context.WithTimeout(ctx, p.checkTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+tagsPath, nil)
	if err != nil {
		return ports.ConnectionStatus{Details: fmt.Sprintf("create request: %v", err)}
	}

	resp, err := p.http.Do(request)
	if err != nil {
		return ports.ConnectionStatus{Details: fmt.Sprintf("cannot reach Ollama at %s: %v", p.baseURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.ConnectionStatus{Details: fmt.Sprintf("Ollama at %s answered %v", p.baseURL, llm.StatusError(resp))}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return ports.ConnectionStatus{ConnectionOK: true, Details: fmt.Sprintf("decode model list: %v", err)}
	}

	available := make([]string, 0, len(tags.Models))
	for _, model := range tags.Models {
		name := model.Name
		if name == "" {
			name = model.Model
		}
		if sameModel(name, p.model) {
			return ports.ConnectionStatus{ConnectionOK: true, ModelOK: true, Details: fmt.Sprintf("connected to %s, model %s is available", p.baseURL, name)}
		}
		available = append(available, name)
	}

	details := fmt.Sprintf("model %q is not available on %s; run `ollama pull %s`", p.model, p.baseURL, p.model)
	if len(available) > 0 {
		details += fmt.Sprintf(" (available: %s)", strings.Join(available, ", "))
	}
	return ports.ConnectionStatus{ConnectionOK: true, Details: details}
}

// sameModel treats "llama3" and "llama3:latest" as the same model.
func sameModel(available, wanted string) bool {
	if available == wanted {
		return true
	}
	return strings.TrimSuffix(available, ":latest") == strings.TrimSuffix(wanted, ":latest")
}

func (p *Provider) ExtractIntent(ctx context.Context, userText string, session *domain.SessionContext) domain.NLUResult {
	raw, err := p.generate(ctx, nlu.BuildIntentPrompt(userText, session), true)
	if err != nil {
		p.logger.Warn("intent extraction failed", zap.Error(err))
		return nlu.TransportFailure(err)
	}

	result := nlu.ParseIntent(raw, ProviderName)
	if reason := result.ErrorReason(); reason != "" {
		p.logger.Debug("intent response rejected", zap.String("reason", reason), zap.String("raw", raw))
	}
	return result
}

func (p *Provider) InvokeForContent(ctx context.Context, instruction string, content string) (string, error) {
	raw, err := p.generate(ctx, nlu.BuildContentPrompt(instruction, content), false)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

func (p *Provider) CheckContentMatch(ctx context.Context, content string, criteria string) (bool, error) {
	raw, err := p.generate(ctx, nlu.BuildContentMatchPrompt(content, criteria), false)
	if err != nil {
		return false, err
	}

	return nlu.ParseYesNo(raw), nil
}

func (p *Provider) GenerateOrganizationPlan(ctx context.Context, itemsSummary string, goal string, basePath string) ([]domain.OrganizationAction, error) {
	raw, err := p.generate(ctx, nlu.BuildOrganizationPrompt(itemsSummary, goal, basePath), true)
	if err != nil {
		return nil, err
	}

	actions, err := nlu.ParsePlan(raw)
	if err != nil {
		p.logger.Debug("organization plan rejected", zap.Error(err), zap.String("raw", raw))
		return nil, err
	}
	return actions, nil
}

func (p *Provider) generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	body := generateRequest{Model: p.model, Prompt: prompt}
	if jsonMode {
		body.Format = "json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := p.http.Do(request)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", llm.StatusError(resp)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != "" {
		return "", errors.New(decoded.Error)
	}

	p.logger.Debug("generate completed",
		zap.Bool("json", jsonMode),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return decoded.Response, nil
}
