package aimux

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestPollinationsCompleter_Complete(t *testing.T) {
	var gotReq pollinationsChatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"hello there"}}]}`))
	}))
	defer srv.Close()

	c := NewPollinationsCompleter(srv.Client(), srv.URL, "", "test-token")
	got, err := c.Complete(context.Background(), CompletionRequest{Prompt: "say hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "hello there" || got.Provider != ProviderPollinations || got.Model != "openai-large" {
		t.Errorf("got %+v", got)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "openai-large" || gotReq.Stream || gotReq.Token != "test-token" {
		t.Errorf("request body = %+v", gotReq)
	}
	if gotReq.MaxTokens != defaultMaxTokens || gotReq.Temperature != defaultTemperature {
		t.Errorf("request defaults = %+v", gotReq)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "say hello" {
		t.Errorf("request messages = %+v", gotReq.Messages)
	}
}

func TestPollinationsCompleter_ModelOverride(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req pollinationsChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewPollinationsCompleter(srv.Client(), srv.URL, "", "test-token")
	got, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hi", Model: "deepseek"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotModel != "deepseek" || got.Model != "deepseek" {
		t.Errorf("sent model %q, result model %q", gotModel, got.Model)
	}
}

func TestPollinationsCompleter_GreedyTemperature(t *testing.T) {
	var gotReq pollinationsChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewPollinationsCompleter(srv.Client(), srv.URL, "", "test-token")
	if _, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hi", Temperature: Ptr(0.0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.Temperature != 0 {
		t.Errorf("sent temperature %v, want explicit 0", gotReq.Temperature)
	}
}

func TestPollinationsCompleter_ErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(t *testing.T, err error)
	}{
		{
			name:   "service unavailable",
			status: http.StatusServiceUnavailable,
			body:   "try again later",
			check: func(t *testing.T, err error) {
				var pe ProviderErr
				if !errors.As(err, &pe) {
					t.Fatalf("expected ProviderErr, got %T: %v", err, err)
				}
				if pe.StatusCode != 503 || pe.Type != "service_unavailable" {
					t.Errorf("got %+v", pe)
				}
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":"bad token"}`,
			check: func(t *testing.T, err error) {
				var pe ProviderErr
				if !errors.As(err, &pe) {
					t.Fatalf("expected ProviderErr, got %T: %v", err, err)
				}
				if pe.StatusCode != 401 || pe.Type != "authentication_error" {
					t.Errorf("got %+v", pe)
				}
			},
		},
		{
			name:   "unparseable body",
			status: http.StatusOK,
			body:   "<html>not json</html>",
			check: func(t *testing.T, err error) {
				var me MalformedResponseErr
				if !errors.As(err, &me) {
					t.Fatalf("expected MalformedResponseErr, got %T: %v", err, err)
				}
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				var me MalformedResponseErr
				if !errors.As(err, &me) {
					t.Fatalf("expected MalformedResponseErr, got %T: %v", err, err)
				}
			},
		},
		{
			name:   "empty content",
			status: http.StatusOK,
			body:   `{"choices":[{"finish_reason":"stop","message":{"content":""}}]}`,
			check: func(t *testing.T, err error) {
				var me MalformedResponseErr
				if !errors.As(err, &me) {
					t.Fatalf("expected MalformedResponseErr, got %T: %v", err, err)
				}
			},
		},
		{
			name:   "content filter",
			status: http.StatusOK,
			body:   `{"choices":[{"finish_reason":"content_filter","message":{"content":"","refusal":"no can do"}}]}`,
			check: func(t *testing.T, err error) {
				var ce ContentPolicyErr
				if !errors.As(err, &ce) {
					t.Fatalf("expected ContentPolicyErr, got %T: %v", err, err)
				}
				if !strings.Contains(ce.Error(), "no can do") {
					t.Errorf("got %v", ce)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewPollinationsCompleter(srv.Client(), srv.URL, "", "test-token")
			_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestPollinationsCompleter_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c := NewPollinationsCompleter(nil, endpoint, "", "test-token")
	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	var te TransportErr
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportErr, got %T: %v", err, err)
	}
	if te.Unwrap() == nil {
		t.Error("transport error lost its cause")
	}
}

func TestPollinationsCompleter_EmptyPrompt(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := NewPollinationsCompleter(srv.Client(), srv.URL, "", "test-token")
	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: ""})
	if !errors.Is(err, EmptyPromptErr) {
		t.Errorf("error = %v, want EmptyPromptErr", err)
	}
	if requests != 0 {
		t.Errorf("%d requests made despite empty prompt", requests)
	}
}

func TestPollinationsImageGenerator_GenerateImage(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte("image bytes"))
	}))
	defer srv.Close()

	g := NewPollinationsImageGenerator(srv.Client(), srv.URL, "", "test-token")
	got, err := g.GenerateImage(context.Background(), ImageRequest{
		Description: "a quiet village square",
		Width:       512,
		Height:      256,
		Seed:        42,
		Enhance:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Provider != ProviderPollinations || got.Model != "flux" {
		t.Errorf("got %+v", got)
	}
	if !strings.HasPrefix(got.URL, srv.URL+"/prompt/") {
		t.Errorf("URL = %q", got.URL)
	}
	if gotPath != "/prompt/a quiet village square" {
		t.Errorf("path = %q", gotPath)
	}
	want := map[string]string{
		"model":   "flux",
		"width":   "512",
		"height":  "256",
		"nologo":  "true",
		"seed":    "42",
		"enhance": "true",
		"token":   "test-token",
	}
	for key, value := range want {
		if gotQuery.Get(key) != value {
			t.Errorf("query %s = %q, want %q", key, gotQuery.Get(key), value)
		}
	}
}

func TestPollinationsImageGenerator_DefaultsOmitOptionalParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte("image bytes"))
	}))
	defer srv.Close()

	g := NewPollinationsImageGenerator(srv.Client(), srv.URL, "", "test-token")
	if _, err := g.GenerateImage(context.Background(), ImageRequest{Description: "a windmill"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("width") != "1024" || gotQuery.Get("height") != "1024" {
		t.Errorf("default size = %sx%s", gotQuery.Get("width"), gotQuery.Get("height"))
	}
	if gotQuery.Has("seed") || gotQuery.Has("enhance") {
		t.Errorf("optional params present: %v", gotQuery)
	}
}

func TestPollinationsImageGenerator_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewPollinationsImageGenerator(srv.Client(), srv.URL, "", "test-token")

	_, err := g.GenerateImage(context.Background(), ImageRequest{Description: "a windmill"})
	var pe ProviderErr
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderErr, got %T: %v", err, err)
	}
	if pe.StatusCode != 502 {
		t.Errorf("got %+v", pe)
	}

	_, err = g.GenerateImage(context.Background(), ImageRequest{})
	if !errors.Is(err, EmptyDescriptionErr) {
		t.Errorf("error = %v, want EmptyDescriptionErr", err)
	}
}
