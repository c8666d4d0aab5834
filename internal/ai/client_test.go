package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkpipe/internal/domain/config"
)

func TestNewClientDisabled(t *testing.T) {
	cases := []config.AIConfig{
		{Provider: "none"},
		{Provider: "gemini"},
		{Provider: ""},
		{Provider: "openai"},
		{Provider: "openai-compatible"},
	}
	for _, c := range cases {
		_, err := NewClient(c)
		if !errors.Is(err, ErrDisabled) {
			t.Errorf("NewClient(%+v) err = %v, want ErrDisabled", c, err)
		}
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(config.AIConfig{Provider: "ollama"})
	if err == nil || errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want unknown provider error", err)
	}
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hi" {
			t.Errorf("request = %+v", req)
		}
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{\"excerpt\":"},{"text":"\"x\"}"}]}}]}`)
	}))
	defer srv.Close()

	c, err := NewClient(config.AIConfig{Provider: "gemini", APIKey: "k", BaseURL: srv.URL, Model: "test-model"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"excerpt":"x"}` {
		t.Fatalf("got %q", got)
	}
	if c.Provider() != "gemini" {
		t.Fatalf("provider = %q", c.Provider())
	}
}

func TestGeminiNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(config.AIConfig{Provider: "gemini", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Generate(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenAICompatibleGenerate(t *testing.T) {
	c, err := NewClient(config.AIConfig{Provider: "openai-compatible", BaseURL: "http://localhost:1234/v1", Model: "llama3.2"})
	if err != nil {
		t.Fatal(err)
	}
	oc := c.(*openAIClient)
	oc.httpClient = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.String() != "http://localhost:1234/v1/chat/completions" {
				t.Errorf("url = %s", req.URL)
			}
			if h := req.Header.Get("Authorization"); h != "" {
				t.Errorf("unexpected auth header %q", h)
			}
			body, _ := io.ReadAll(req.Body)
			var payload chatRequest
			_ = json.Unmarshal(body, &payload)
			if payload.Model != "llama3.2" {
				t.Errorf("model = %q", payload.Model)
			}
			return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`), nil
		}),
	}

	got, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestOpenAISendsBearer(t *testing.T) {
	c, err := NewClient(config.AIConfig{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}
	oc := c.(*openAIClient)
	oc.httpClient = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if h := req.Header.Get("Authorization"); h != "Bearer sk-test" {
				t.Errorf("auth = %q", h)
			}
			return jsonResponse(http.StatusOK, `{"choices":[]}`), nil
		}),
	}
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected empty response error")
	}
}

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
