package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypath/studypath-api/pkg/config"
)

func testConfig(endpoint string) config.GenAIConfig {
	return config.GenAIConfig{
		Endpoint:        endpoint,
		DefaultModel:    "gemini-1.5-flash",
		Timeout:         time.Second,
		Temperature:     0.7,
		MaxOutputTokens: 1024,
	}
}

func TestClientGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "hola", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 0.7, req.GenerationConfig.Temperature)
		assert.Equal(t, 256, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Estudia a diario."}]}}]}`))
	}))
	defer srv.Close()

	maxTokens := 256
	client := NewClient(testConfig(srv.URL), nil)
	resp, err := client.Generate(context.Background(), GenerateRequest{
		APIKey:          "secret",
		Model:           "gemini-pro",
		Prompt:          "hola",
		MaxOutputTokens: &maxTokens,
	})

	require.NoError(t, err)
	assert.Equal(t, "Estudia a diario.", resp.Text)
	assert.Equal(t, "gemini-pro", resp.Model)
}

func TestClientGenerateDefaultsModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(testConfig(srv.URL), nil).Generate(context.Background(), GenerateRequest{APIKey: "k", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", resp.Model)
}

func TestClientGenerateMissingKey(t *testing.T) {
	_, err := NewClient(testConfig("http://127.0.0.1:1"), nil).Generate(context.Background(), GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClientGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Generate(context.Background(), GenerateRequest{APIKey: "bad", Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestClientGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Generate(context.Background(), GenerateRequest{APIKey: "k", Prompt: "p"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClientGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	_, err := NewClient(cfg, nil).Generate(context.Background(), GenerateRequest{APIKey: "k", Prompt: "p"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClientGenerateUnavailable(t *testing.T) {
	_, err := NewClient(testConfig("http://127.0.0.1:1"), nil).Generate(context.Background(), GenerateRequest{APIKey: "k", Prompt: "p"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientGenerateUnavailableHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := NewClient(testConfig(endpoint), nil).Generate(context.Background(), GenerateRequest{APIKey: "SERVER-SECRET-KEY", Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotContains(t, err.Error(), "SERVER-SECRET-KEY")
}
