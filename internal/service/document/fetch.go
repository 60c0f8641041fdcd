package document

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// FetchOptions customizes remote document fetching
type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// DefaultFetchOptions returns the default fetching options
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Timeout:   30 * time.Second,
		UserAgent: "Mozilla/5.0 (compatible; DeckgenFetcher/1.0)",
		MaxBytes:  5 * 1024 * 1024,
	}
}

// FromURL fetches a remote page and normalizes it into document content
func FromURL(target string, options ...FetchOptions) (*Content, error) {
	opts := DefaultFetchOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.MaxDepth(1),
		colly.UserAgent(opts.UserAgent),
	)
	c.SetRequestTimeout(opts.Timeout)

	var body []byte
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		if int64(len(r.Body)) > opts.MaxBytes {
			fetchErr = ErrTooLarge
			return
		}
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, fetchErr)
	}
	if len(body) == 0 {
		return nil, ErrEmptyDocument
	}

	content, err := FromHTML(string(body))
	if err != nil {
		return nil, err
	}
	content.Source = SourceURL
	return content, nil
}
