package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TermsPlaceholder replaces the legal-terms body when the upstream
// text host is unreachable. Rendering degrades instead of failing.
const TermsPlaceholder = "Terms and conditions are temporarily unavailable. Please contact our offices for a copy."

// TermsSource fetches externally hosted legal-terms text and memoizes
// it for a short TTL independent of any session.
type TermsSource struct {
	url   string
	ttl   time.Duration
	http  *http.Client
	nowFn func() time.Time

	mu        sync.Mutex
	text      string
	fetchedAt time.Time
}

func NewTermsSource(url string, ttl time.Duration, timeout time.Duration) *TermsSource {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &TermsSource{
		url:   url,
		ttl:   ttl,
		http:  &http.Client{Timeout: timeout},
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Text returns the terms body, or the placeholder when the host cannot
// be reached and nothing cached is fresh enough.
func (t *TermsSource) Text(ctx context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.text != "" && t.nowFn().Sub(t.fetchedAt) < t.ttl {
		return t.text
	}
	body, err := t.fetch(ctx)
	if err != nil || strings.TrimSpace(body) == "" {
		if t.text != "" {
			return t.text
		}
		return TermsPlaceholder
	}
	t.text = body
	t.fetchedAt = t.nowFn()
	return t.text
}

func (t *TermsSource) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("terms host returned %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
