package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/temirbekuulu/deckgen/internal/service/llm/ratelimit"
	"github.com/temirbekuulu/deckgen/internal/service/llm/tokens"
)

// Logger interface for service logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Common errors
var (
	ErrAPIRequestFailed  = errors.New("LLM API request failed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrBudgetExceeded    = errors.New("daily token budget exceeded")
	ErrInvalidProvider   = errors.New("invalid LLM provider specified")
	ErrCacheMiss         = errors.New("cache miss")
	ErrEmptyResponse     = errors.New("empty LLM response")
)

// DefaultLogger provides a basic implementation of the Logger interface
type DefaultLogger struct{}

func (l *DefaultLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.Printf("[DEBUG] %s %v", msg, keysAndValues)
}

func (l *DefaultLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Printf("[INFO] %s %v", msg, keysAndValues)
}

func (l *DefaultLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Printf("[ERROR] %s %v", msg, keysAndValues)
}

// Options controls text generation parameters
type Options struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	TopK        int32   `json:"top_k"`
	MaxTokens   int32   `json:"max_tokens"`
}

// Usage reports token consumption for a single request
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Result carries the generated text together with request metadata
type Result struct {
	Text           string        `json:"text"`
	ProviderUsed   string        `json:"provider_used"`
	Model          string        `json:"model"`
	Usage          Usage         `json:"usage"`
	CachedResult   bool          `json:"cached_result"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Provider interface for LLM providers
type Provider interface {
	// GenerateText produces a completion for the given prompt
	GenerateText(ctx context.Context, prompt string, opts Options) (string, Usage, error)

	// GetName returns the name of the provider
	GetName() string

	// GetModel returns the model the provider is configured with
	GetModel() string

	// Close performs any necessary cleanup
	Close() error
}

// Service handles LLM API interactions with caching, rate limiting and
// budget tracking
type Service struct {
	providers       map[string]Provider
	defaultProvider string
	redisClient     *redis.Client
	limiter         *ratelimit.Limiter
	budget          *tokens.BudgetTracker
	cacheTTL        time.Duration
	maxRetries      int
	retryDelay      time.Duration
	mutex           sync.RWMutex
	logger          Logger
}

// ServiceOptions contains configuration for the LLM service
type ServiceOptions struct {
	DefaultProvider   string
	RedisClient       *redis.Client
	RequestsPerMinute int
	DailyBudgetUSD    float64
	CacheTTL          time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	Logger            Logger
}

// NewService creates a new LLM service with the specified options
func NewService(opts ServiceOptions) *Service {
	// Set default values if not provided
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.RequestsPerMinute == 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 1 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = &DefaultLogger{}
	}

	return &Service{
		providers:       make(map[string]Provider),
		defaultProvider: opts.DefaultProvider,
		redisClient:     opts.RedisClient,
		limiter:         ratelimit.NewLimiter(opts.RequestsPerMinute),
		budget:          tokens.NewBudgetTracker(opts.RedisClient, opts.DailyBudgetUSD),
		cacheTTL:        opts.CacheTTL,
		maxRetries:      opts.MaxRetries,
		retryDelay:      opts.RetryDelay,
		logger:          opts.Logger,
	}
}

// RegisterProvider registers an LLM provider with the service
func (s *Service) RegisterProvider(provider Provider) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	providerName := provider.GetName()
	s.providers[providerName] = provider

	if s.defaultProvider == "" {
		s.defaultProvider = providerName
	}

	s.logger.Info("Registered LLM provider", "provider", providerName, "model", provider.GetModel())
}

// GetProvider returns a provider by name, using the default if name is empty
func (s *Service) GetProvider(name string) (Provider, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if name == "" {
		name = s.defaultProvider
	}

	provider, exists := s.providers[name]
	if !exists {
		return nil, ErrInvalidProvider
	}

	return provider, nil
}

// Providers returns the names of all registered providers
func (s *Service) Providers() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// Limiter exposes the sliding-window limiter guarding provider calls
func (s *Service) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Budget exposes the daily budget tracker
func (s *Service) Budget() *tokens.BudgetTracker {
	return s.budget
}

// Logger exposes the service logger so callers can share it
func (s *Service) Logger() Logger {
	return s.logger
}

// generateCacheKey creates a cache key from the prompt and options
func (s *Service) generateCacheKey(providerName, model, prompt string, opts Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%.2f|%.2f|%d|%d|", providerName, model,
		opts.Temperature, opts.TopP, opts.TopK, opts.MaxTokens)
	h.Write([]byte(prompt))
	return "llm:gen:" + hex.EncodeToString(h.Sum(nil))
}

// getFromCache retrieves a response from Redis cache
func (s *Service) getFromCache(ctx context.Context, key string) (*Result, error) {
	if s.redisClient == nil {
		return nil, ErrCacheMiss
	}

	data, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		s.logger.Error("Failed to unmarshal cached response", "error", err, "key", key)
		return nil, ErrCacheMiss
	}

	return &result, nil
}

// saveToCache saves a response to Redis cache
func (s *Service) saveToCache(ctx context.Context, key string, result *Result) error {
	if s.redisClient == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return s.redisClient.Set(ctx, key, data, s.cacheTTL).Err()
}

// Generate produces a completion with caching, rate limiting, budget
// enforcement and retries. Cache hits bypass the limiter and the budget
// check entirely.
func (s *Service) Generate(ctx context.Context, providerName, prompt string, opts Options) (*Result, error) {
	startTime := time.Now()

	provider, err := s.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	// Try to get from cache first
	cacheKey := s.generateCacheKey(provider.GetName(), provider.GetModel(), prompt, opts)
	if s.redisClient != nil {
		cachedResult, err := s.getFromCache(ctx, cacheKey)
		if err == nil {
			cachedResult.CachedResult = true
			cachedResult.ProcessingTime = time.Since(startTime)

			s.logger.Debug("Cache hit for generation",
				"provider", cachedResult.ProviderUsed)

			return cachedResult, nil
		}
	}

	// Enforce the daily spending cap before any provider call
	if s.budget.IsBudgetExceeded() {
		s.logger.Error("Daily budget exhausted", "provider", provider.GetName())
		return nil, ErrBudgetExceeded
	}

	// Execute with retries
	var text string
	var usage Usage
	var lastErr error

	for retry := 0; retry <= s.maxRetries; retry++ {
		if retry > 0 {
			s.logger.Info("Retrying LLM API request",
				"attempt", retry,
				"provider", provider.GetName())

			// Wait before retry with exponential backoff
			select {
			case <-time.After(s.retryDelay * time.Duration(1<<uint(retry-1))):
				// Continue after delay
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		// Every attempt counts against the sliding window
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Error("Rate limit wait aborted", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrRateLimitExceeded, err)
		}
		s.limiter.Record()
		text, usage, lastErr = provider.GenerateText(ctx, prompt, opts)
		if lastErr == nil && strings.TrimSpace(text) == "" {
			lastErr = ErrEmptyResponse
		}
		if lastErr == nil {
			break
		}

		s.logger.Error("LLM API request failed",
			"error", lastErr,
			"provider", provider.GetName(),
			"retry", retry)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequestFailed, lastErr)
	}

	// Record spend for the budget tracker
	if err := s.budget.RecordUsage(tokens.UsageEntry{
		Model:            provider.GetModel(),
		Provider:         provider.GetName(),
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	}); err != nil {
		s.logger.Error("Failed to record token usage", "error", err)
	}

	result := &Result{
		Text:           text,
		ProviderUsed:   provider.GetName(),
		Model:          provider.GetModel(),
		Usage:          usage,
		CachedResult:   false,
		ProcessingTime: time.Since(startTime),
	}

	// Cache the result
	if s.redisClient != nil {
		if err := s.saveToCache(ctx, cacheKey, result); err != nil {
			s.logger.Error("Failed to cache LLM response", "error", err)
		}
	}

	s.logger.Info("Generated text successfully",
		"provider", provider.GetName(),
		"time", result.ProcessingTime)

	return result, nil
}

// Close releases all registered providers
func (s *Service) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for name, provider := range s.providers {
		if err := provider.Close(); err != nil {
			s.logger.Error("Failed to close provider", "provider", name, "error", err)
		}
	}
}

// CleanCodeBlocks removes markdown code block markers from text
func CleanCodeBlocks(text string) string {
	codeBlocksRegex := regexp.MustCompile("(?s)```(json)?(.+?)```")
	if matches := codeBlocksRegex.FindStringSubmatch(text); len(matches) > 2 {
		return strings.TrimSpace(matches[2])
	}

	return strings.TrimSpace(text)
}

// ExtractJSON pulls the first JSON object out of a model response that may
// wrap it in prose or code fences
func ExtractJSON(text string) (string, error) {
	cleaned := CleanCodeBlocks(text)

	start := strings.IndexAny(cleaned, "{[")
	if start == -1 {
		return "", errors.New("no JSON found in response")
	}

	open := cleaned[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == open:
			depth++
		case !inString && c == closing:
			depth--
			if depth == 0 {
				return cleaned[start : i+1], nil
			}
		}
	}

	return "", errors.New("unbalanced JSON in response")
}
