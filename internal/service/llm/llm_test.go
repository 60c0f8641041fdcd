package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	name      string
	model     string
	responses []string
	errs      []error
	calls     int
}

func (p *fakeProvider) GenerateText(ctx context.Context, prompt string, opts Options) (string, Usage, error) {
	i := p.calls
	p.calls++
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	text := ""
	if i < len(p.responses) {
		text = p.responses[i]
	}
	return text, Usage{PromptTokens: 10, CompletionTokens: 20}, err
}

func (p *fakeProvider) GetName() string  { return p.name }
func (p *fakeProvider) GetModel() string { return p.model }
func (p *fakeProvider) Close() error     { return nil }

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestService(retries int) *Service {
	return NewService(ServiceOptions{
		RequestsPerMinute: 0, // no limiting in tests
		MaxRetries:        retries,
		RetryDelay:        time.Millisecond,
		Logger:            nopLogger{},
	})
}

func TestGenerate(t *testing.T) {
	t.Run("successful generation", func(t *testing.T) {
		svc := newTestService(1)
		provider := &fakeProvider{name: "fake", model: "fake-1", responses: []string{"a slide deck outline"}}
		svc.RegisterProvider(provider)

		result, err := svc.Generate(context.Background(), "fake", "summarize this", Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Text != "a slide deck outline" {
			t.Errorf("got text %q", result.Text)
		}
		if result.ProviderUsed != "fake" || result.Model != "fake-1" {
			t.Errorf("metadata not set: %+v", result)
		}
		if result.CachedResult {
			t.Error("fresh result marked as cached")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		svc := newTestService(1)

		_, err := svc.Generate(context.Background(), "missing", "prompt", Options{})
		if !errors.Is(err, ErrInvalidProvider) {
			t.Errorf("expected ErrInvalidProvider, got %v", err)
		}
	})

	t.Run("empty name uses default provider", func(t *testing.T) {
		svc := newTestService(1)
		svc.RegisterProvider(&fakeProvider{name: "fake", model: "fake-1", responses: []string{"ok"}})

		result, err := svc.Generate(context.Background(), "", "prompt", Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ProviderUsed != "fake" {
			t.Errorf("expected default provider, got %q", result.ProviderUsed)
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		svc := newTestService(2)
		provider := &fakeProvider{
			name:      "flaky",
			model:     "fake-1",
			responses: []string{"", "", "finally"},
			errs:      []error{errors.New("503"), errors.New("timeout"), nil},
		}
		svc.RegisterProvider(provider)

		result, err := svc.Generate(context.Background(), "flaky", "prompt", Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Text != "finally" {
			t.Errorf("got text %q", result.Text)
		}
		if provider.calls != 3 {
			t.Errorf("expected 3 calls, got %d", provider.calls)
		}
	})

	t.Run("exhausted retries return error", func(t *testing.T) {
		svc := newTestService(1)
		provider := &fakeProvider{
			name: "broken",
			errs: []error{errors.New("boom"), errors.New("boom")},
		}
		svc.RegisterProvider(provider)

		_, err := svc.Generate(context.Background(), "broken", "prompt", Options{})
		if !errors.Is(err, ErrAPIRequestFailed) {
			t.Errorf("expected ErrAPIRequestFailed, got %v", err)
		}
		if provider.calls != 2 {
			t.Errorf("expected 2 calls, got %d", provider.calls)
		}
	})

	t.Run("blank text treated as failure", func(t *testing.T) {
		svc := newTestService(0)
		svc.RegisterProvider(&fakeProvider{name: "blank", responses: []string{"   \n"}})

		_, err := svc.Generate(context.Background(), "blank", "prompt", Options{})
		if !errors.Is(err, ErrAPIRequestFailed) {
			t.Errorf("expected ErrAPIRequestFailed, got %v", err)
		}
	})
}

func TestCleanCodeBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no code blocks", "plain text", "plain text"},
		{"json fence", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"bare fence", "```\nhello\n```", "hello"},
		{"surrounding whitespace", "  text  ", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCodeBlocks(tt.input); got != tt.want {
				t.Errorf("CleanCodeBlocks(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		got, err := ExtractJSON(`{"title": "Intro"}`)
		if err != nil || got != `{"title": "Intro"}` {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		got, err := ExtractJSON("Here is the plan:\n{\"slides\": [{\"n\": 1}]}\nHope that helps!")
		if err != nil || got != `{"slides": [{"n": 1}]}` {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("object in code fence", func(t *testing.T) {
		got, err := ExtractJSON("```json\n{\"a\": \"b\"}\n```")
		if err != nil || got != `{"a": "b"}` {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("array response", func(t *testing.T) {
		got, err := ExtractJSON(`The themes are: ["growth", "strategy"]`)
		if err != nil || got != `["growth", "strategy"]` {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("braces inside strings", func(t *testing.T) {
		got, err := ExtractJSON(`{"note": "use {placeholders} here"}`)
		if err != nil || got != `{"note": "use {placeholders} here"}` {
			t.Errorf("got %q, %v", got, err)
		}
	})

	t.Run("no JSON at all", func(t *testing.T) {
		if _, err := ExtractJSON("sorry, I cannot help with that"); err == nil {
			t.Error("expected error for JSON-free response")
		}
	})

	t.Run("truncated JSON", func(t *testing.T) {
		if _, err := ExtractJSON(`{"title": "cut off`); err == nil {
			t.Error("expected error for unbalanced JSON")
		}
	})
}
