package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeebooks/expiredbot/internal/cache"
	"github.com/freeebooks/expiredbot/internal/domain"
	"github.com/freeebooks/expiredbot/internal/price"
)

type stubForum struct {
	posts    []domain.Post
	listErr  error
	comments []string
	flaired  []string
	messages []string
}

func (s *stubForum) HotPosts(_ context.Context, _ string, _ int) ([]domain.Post, error) {
	return s.posts, s.listErr
}

func (s *stubForum) AddComment(_ context.Context, post domain.Post, body string) error {
	s.comments = append(s.comments, post.URL+": "+body)
	return nil
}

func (s *stubForum) SetFlair(_ context.Context, post domain.Post, label, cssClass string) error {
	s.flaired = append(s.flaired, fmt.Sprintf("%s=%s/%s", post.URL, label, cssClass))
	return nil
}

func (s *stubForum) SendMessage(_ context.Context, recipient, subject, _ string) error {
	s.messages = append(s.messages, recipient+": "+subject)
	return nil
}

// stubPrices maps URL -> result; unlisted URLs get no_rule.
type stubPrices map[string]price.Result

func (s stubPrices) Price(_ context.Context, url string) price.Result {
	if res, ok := s[url]; ok {
		return res
	}
	return price.Result{Status: price.StatusNoRule}
}

func newCaches(t *testing.T) Caches {
	t.Helper()
	review, err := cache.New(100)
	require.NoError(t, err)
	expired, err := cache.New(100)
	require.NoError(t, err)
	return Caches{NeedsReview: review, AlreadyExpired: expired}
}

func defaultOpts() Options {
	return Options{FlairLabel: "Expired", FlairCSSClass: "closed"}
}

func TestRunEndToEnd(t *testing.T) {
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_a", URL: "http://www.gutenberg.org/ebooks/1342", Title: "A"},
		{FullID: "t3_b", URL: "https://www.amazon.com/dp/B1", Title: "B", Permalink: "https://reddit.com/b"},
		{FullID: "t3_c", URL: "http://unsupported.example.com/book", Title: "C"},
	}}
	prices := stubPrices{
		"https://www.amazon.com/dp/B1": {Price: "$4.99", Status: price.StatusFound},
	}
	caches := newCaches(t)

	out, err := New(forum, prices, defaultOpts()).Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)

	require.Len(t, out.Expired, 1)
	assert.Equal(t, "B", out.Expired[0].Title)
	assert.Equal(t, "$4.99", out.Expired[0].Price)

	require.Len(t, out.NeedsReview, 1)
	assert.Equal(t, "C", out.NeedsReview[0].Title)

	// Known-free post A triggers nothing and is cached nowhere.
	assert.False(t, caches.NeedsReview.Contains("http://www.gutenberg.org/ebooks/1342"))
	assert.Equal(t, 1, caches.NeedsReview.Len())
	assert.True(t, caches.NeedsReview.Contains("http://unsupported.example.com/book"))

	// B got its comment, flair, and already-expired cache entry. The
	// comment keeps the template's surrounding blank lines.
	require.Len(t, forum.comments, 1)
	assert.Contains(t, forum.comments[0], "$4.99")
	assert.Contains(t, forum.comments[0], "https://reddit.com/b")
	body := strings.TrimPrefix(forum.comments[0], "https://www.amazon.com/dp/B1: ")
	assert.True(t, strings.HasPrefix(body, "\nThis link points"), "comment body = %q", body)
	assert.True(t, strings.HasSuffix(body, ").\n"), "comment body = %q", body)
	require.Len(t, forum.flaired, 1)
	assert.Equal(t, "https://www.amazon.com/dp/B1=Expired/closed", forum.flaired[0])
	assert.True(t, caches.AlreadyExpired.Contains("https://www.amazon.com/dp/B1"))
}

func TestRunRecordsListingRank(t *testing.T) {
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_a", URL: "http://one.example.com/"},
		{FullID: "t3_b", URL: "http://two.example.com/"},
	}}
	caches := newCaches(t)

	out, err := New(forum, stubPrices{}, defaultOpts()).Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)

	require.Len(t, out.NeedsReview, 2)
	assert.Equal(t, 0, out.NeedsReview[0].Rank)
	assert.Equal(t, 1, out.NeedsReview[1].Rank)
}

func TestDryRunSuppressesMutations(t *testing.T) {
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_b", URL: "https://www.amazon.com/dp/B1"},
	}}
	prices := stubPrices{
		"https://www.amazon.com/dp/B1": {Price: "$12.34", Status: price.StatusFound},
	}
	caches := newCaches(t)

	opts := defaultOpts()
	opts.DryRun = true
	out, err := New(forum, prices, opts).Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)

	// Reported for the digest, but nothing touched on the forum and no
	// already-expired cache entry.
	require.Len(t, out.Expired, 1)
	assert.Empty(t, forum.comments)
	assert.Empty(t, forum.flaired)
	assert.Equal(t, 0, caches.AlreadyExpired.Len())
}

func TestAllZeroPriceIsStillFree(t *testing.T) {
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_b", URL: "https://www.amazon.com/dp/B1"},
	}}
	prices := stubPrices{
		"https://www.amazon.com/dp/B1": {Price: "$0.00", Status: price.StatusFound},
	}
	caches := newCaches(t)

	out, err := New(forum, prices, defaultOpts()).Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)

	assert.Empty(t, out.Expired)
	assert.Empty(t, out.NeedsReview)
	assert.Empty(t, forum.comments)
}

func TestEmptyPriceWithFoundStatusNeedsReview(t *testing.T) {
	// A selector can match a page yet capture nothing; such posts are
	// unknowns, not free ones.
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_b", URL: "https://www.amazon.com/dp/B1"},
	}}
	prices := stubPrices{
		"https://www.amazon.com/dp/B1": {Price: "", Status: price.StatusFound},
	}
	caches := newCaches(t)

	out, err := New(forum, prices, defaultOpts()).Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)

	assert.Empty(t, out.Expired)
	require.Len(t, out.NeedsReview, 1)
	assert.True(t, caches.NeedsReview.Contains("https://www.amazon.com/dp/B1"))
}

func TestRepeatSightingIsNotReportedAgain(t *testing.T) {
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_c", URL: "http://unsupported.example.com/book"},
	}}
	caches := newCaches(t)
	p := New(forum, stubPrices{}, defaultOpts())

	first, err := p.Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)
	require.Len(t, first.NeedsReview, 1)

	second, err := p.Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)
	assert.Empty(t, second.NeedsReview, "cached URL must not be reported twice")
	assert.True(t, caches.NeedsReview.Contains("http://unsupported.example.com/book"),
		"repeat sighting still refreshes the cache")
}

func TestAlreadyExpiredPostsAreSkipped(t *testing.T) {
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_a", URL: "https://www.amazon.com/dp/B1", FlairClass: "closed"},
		{FullID: "t3_b", URL: "https://www.amazon.com/dp/B2"},
	}}
	prices := stubPrices{
		"https://www.amazon.com/dp/B1": {Price: "$9.99", Status: price.StatusFound},
		"https://www.amazon.com/dp/B2": {Price: "$9.99", Status: price.StatusFound},
	}
	caches := newCaches(t)
	caches.AlreadyExpired.Touch("https://www.amazon.com/dp/B2")

	out, err := New(forum, prices, defaultOpts()).Run(context.Background(), "freeebooks", 100, caches)
	require.NoError(t, err)

	assert.Empty(t, out.Expired, "flaired and cached posts are both terminal")
	assert.Empty(t, forum.comments)
}

func TestTestDataRunExaminesExpiredPosts(t *testing.T) {
	forum := &stubForum{posts: []domain.Post{
		{FullID: "t3_a", URL: "https://www.amazon.com/dp/B1", FlairClass: "closed"},
	}}
	prices := stubPrices{
		"https://www.amazon.com/dp/B1": {Price: "$9.99", Status: price.StatusFound},
	}
	caches := newCaches(t)

	opts := defaultOpts()
	opts.TestData = true
	opts.DryRun = true
	out, err := New(forum, prices, opts).Run(context.Background(), "chtorrr", 100, caches)
	require.NoError(t, err)

	assert.Len(t, out.Expired, 1)
}

func TestListingFailurePropagates(t *testing.T) {
	forum := &stubForum{listErr: fmt.Errorf("api down")}
	_, err := New(forum, stubPrices{}, defaultOpts()).Run(context.Background(), "freeebooks", 100, newCaches(t))
	assert.Error(t, err)
}
