// Package pipeline decides, for each post in the listing, whether the
// linked ebook is still free, has expired, or needs a human look.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/freeebooks/expiredbot/internal/cache"
	"github.com/freeebooks/expiredbot/internal/domain"
	"github.com/freeebooks/expiredbot/internal/price"
)

// The comment left on expired posts. The two slots are the current
// price and the post's permalink (for the message-the-mods link).
const expiredMessage = `
This link points to an ebook that is no longer free (current price: %s), and
consequently has been marked as expired.

I am a bot. If I have made a mistake, please [message the
moderators](http://www.reddit.com/message/compose?to=/r/FreeEBOOKS&subject=expired_link_bot&message=%s).
`

// PriceSource is the part of the price fetcher the pipeline uses.
type PriceSource interface {
	Price(ctx context.Context, url string) price.Result
}

// Options controls side effects and the expired-post markers.
type Options struct {
	// DryRun suppresses all forum mutations and cache persistence.
	DryRun bool
	// TestData marks a diagnostic run over a test subreddit: posts
	// already flaired expired are examined anyway.
	TestData bool

	FlairLabel    string
	FlairCSSClass string
}

// Caches are the two recency caches, loaded by the caller before the
// run and persisted by the caller afterwards.
type Caches struct {
	NeedsReview    *cache.Recency
	AlreadyExpired *cache.Recency
}

// Outcome holds the posts the run acted on, in listing order.
type Outcome struct {
	Expired     []domain.Post
	NeedsReview []domain.Post
}

// Pipeline classifies the posts of one run.
type Pipeline struct {
	forum  domain.Forum
	prices PriceSource
	opts   Options
}

func New(forum domain.Forum, prices PriceSource, opts Options) *Pipeline {
	return &Pipeline{forum: forum, prices: prices, opts: opts}
}

// Run pulls the hot listing and classifies every post. Price lookups
// that fail are treated as unknown; the only error returned is a
// failure to fetch the listing itself.
func (p *Pipeline) Run(ctx context.Context, subreddit string, limit int, caches Caches) (Outcome, error) {
	posts, err := p.forum.HotPosts(ctx, subreddit, limit)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetch hot posts: %w", err)
	}

	var out Outcome
	for rank := range posts {
		post := &posts[rank]
		post.Rank = rank

		p.check(ctx, post, caches, &out)
	}
	return out, nil
}

func (p *Pipeline) check(ctx context.Context, post *domain.Post, caches Caches, out *Outcome) {
	// Skip anything already marked expired, unless this is a
	// diagnostic run over test data. The membership check must not
	// refresh the entry's recency.
	alreadyExpired := post.FlairClass == p.opts.FlairCSSClass ||
		caches.AlreadyExpired.Contains(post.URL)
	if alreadyExpired && !p.opts.TestData {
		return
	}

	res := p.prices.Price(ctx, post.URL)
	// An empty price means unknown, whatever the fetch status says; a
	// lookup can succeed yet extract nothing.
	if res.Price == "" {
		if price.KnownFree(post.URL) {
			// No human review needed.
			return
		}

		// The bot can't tell whether this one is still free. Tell the
		// mods, but only the first time we see the URL; either way the
		// entry moves to the front of the cache so repeats stay
		// suppressed.
		if !caches.NeedsReview.Seen(post.URL) {
			out.NeedsReview = append(out.NeedsReview, *post)
		}
		caches.NeedsReview.Touch(post.URL)
		slog.Info("needs review", "url", post.URL, "reason", res.Status.String())
		return
	}

	if !strings.ContainsAny(res.Price, "123456789") {
		// No nonzero digit anywhere in the price: still free. This is
		// a crude test on purpose; it is not a currency parser.
		return
	}

	// Priced, so no longer free.
	post.Price = res.Price
	if !p.opts.DryRun {
		if err := p.forum.AddComment(ctx, *post, fmt.Sprintf(expiredMessage, res.Price, post.Permalink)); err != nil {
			slog.Error("add comment failed", "url", post.URL, "err", err)
		}
		if err := p.forum.SetFlair(ctx, *post, p.opts.FlairLabel, p.opts.FlairCSSClass); err != nil {
			slog.Error("set flair failed", "url", post.URL, "err", err)
		}
		// Remember it, so a later accidental un-expiration doesn't get
		// the post re-flagged the next day.
		caches.AlreadyExpired.Touch(post.URL)
	}
	out.Expired = append(out.Expired, *post)
	slog.Info("marked expired", "url", post.URL, "price", res.Price, "dry_run", p.opts.DryRun)
}
