package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studypath/studypath-api/pkg/config"
)

// GenerateRequest holds the parameters of one generation call. The
// credential and model travel with the request; the client keeps no user
// state.
type GenerateRequest struct {
	APIKey          string
	Model           string
	Prompt          string
	Temperature     *float64 // nil uses the configured default
	MaxOutputTokens *int     // nil uses the configured default
}

// GenerateResponse holds the generated text.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

const apiKeyHeader = "x-goog-api-key"

// Client calls the generateContent endpoint of the generative-language API.
type Client struct {
	cfg    config.GenAIConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a Client. The per-call timeout is applied through the
// request context.
func NewClient(cfg config.GenAIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
		logger: logger,
	}
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends req and returns the first candidate's text. There are no
// retries.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	model := req.Model
	if model == "" {
		model = c.cfg.DefaultModel
	}
	temperature := c.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := c.cfg.MaxOutputTokens
	if req.MaxOutputTokens != nil {
		maxTokens = *req.MaxOutputTokens
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := c.doRequest(ctx, req.APIKey, model, generateContentRequest{
		Contents:         []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{Temperature: temperature, MaxOutputTokens: maxTokens},
	})
	latency := time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case ctx.Err() != nil:
			err = ErrTimeout
		case isConnectionError(err):
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		c.logger.Warn("genai call failed", zap.String("model", model), zap.Int64("latency_ms", latency), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("genai call completed", zap.String("model", model), zap.Int64("latency_ms", latency))
	return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
}

func (c *Client) doRequest(ctx context.Context, apiKey, model string, body generateContentRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.Endpoint, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// The key stays out of the URL so transport errors never echo it.
	httpReq.Header.Set(apiKeyHeader, apiKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var apiErr errorResponse
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, httpResp.StatusCode, message)
	}

	var resp generateContentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
