package price

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// Status says how a price lookup went.
type Status int

const (
	// StatusFound means the page was fetched and the price extracted.
	StatusFound Status = iota
	// StatusNoRule means the site is not in the selector table; no
	// fetch was attempted.
	StatusNoRule
	// StatusUnreachable means the fetch itself failed (network error,
	// timeout, non-200 status).
	StatusUnreachable
	// StatusUnparseable means the page was fetched but the price could
	// not be extracted (decode failure or no pattern match).
	StatusUnparseable
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNoRule:
		return "no_rule"
	case StatusUnreachable:
		return "unreachable"
	case StatusUnparseable:
		return "unparseable"
	}
	return "unknown"
}

// Result is the outcome of a single lookup. Price is empty unless
// Status is StatusFound.
type Result struct {
	Price  string
	Status Status
	Err    error
}

// Known reports whether a price was extracted.
func (r Result) Known() bool {
	return r.Status == StatusFound
}

// Fetcher retrieves retailer pages and pulls prices out of them. All
// fetches share one limiter so the bot never sends more than one
// request per second to anyone, no matter how long the listing is.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string

	// maxBodyRead caps how much of a page is read while hunting for
	// the price.
	maxBodyRead int64
}

// NewFetcher returns a Fetcher with the standard politeness limits.
func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(1*time.Second), 1),
		userAgent:   userAgent,
		maxBodyRead: 1 << 20,
	}
}

// Price looks up the advertised price of the ebook at url. Every
// failure mode collapses to a non-Found Result rather than an error;
// the reason is logged for the operator and kept in Result for tests.
func (f *Fetcher) Price(ctx context.Context, url string) Result {
	rule := SelectorFor(url)
	if rule == nil {
		// Unsupported site. Deterministic, no network call.
		return Result{Status: StatusNoRule}
	}
	return f.fetch(ctx, url, rule)
}

func (f *Fetcher) fetch(ctx context.Context, url string, rule *Rule) Result {
	// Pause for the limiter before every fetch; this is what keeps the
	// bot at or under one request per second.
	if err := f.limiter.Wait(ctx); err != nil {
		return Result{Status: StatusUnreachable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("price fetch failed", "url", url, "stage", "request", "err", err)
		return Result{Status: StatusUnreachable, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("price fetch failed", "url", url, "stage", "fetch", "err", err)
		return Result{Status: StatusUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("price fetch failed", "url", url, "stage", "fetch", "status", resp.StatusCode)
		return Result{Status: StatusUnreachable}
	}

	// Decode using whatever encoding the response declares.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodyRead), resp.Header.Get("Content-Type"))
	if err != nil {
		slog.Warn("price fetch failed", "url", url, "stage", "decode", "err", err)
		return Result{Status: StatusUnparseable, Err: err}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		slog.Warn("price fetch failed", "url", url, "stage", "decode", "err", err)
		return Result{Status: StatusUnparseable, Err: err}
	}

	match := rule.Pattern.FindSubmatch(body)
	if match == nil {
		slog.Warn("price fetch failed", "url", url, "stage", "match")
		return Result{Status: StatusUnparseable}
	}
	extracted := strings.TrimSpace(string(match[1]))
	if extracted == "" {
		// The pattern matched but captured nothing; an empty price is
		// no price at all.
		slog.Warn("price fetch failed", "url", url, "stage", "match", "reason", "empty capture")
		return Result{Status: StatusUnparseable}
	}
	return Result{Price: extracted, Status: StatusFound}
}
