package forum

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"github.com/freeebooks/expiredbot/internal/domain"
)

// APIClient talks to Reddit through the authenticated OAuth API.
type APIClient struct {
	client  *reddit.Client
	limiter *rate.Limiter
}

func NewAPIClient(id, secret, user, pass, userAgent string) (*APIClient, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: user, Password: pass}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}

	// API Rate Limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIClient{client: client, limiter: limiter}, nil
}

// HotPosts fetches the listing through the client's request plumbing
// rather than its typed Posts call, because the typed response does not
// carry the link flair the pipeline keys its skip check on. Listings
// deeper than one page are followed via the "after" cursor.
func (ac *APIClient) HotPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	var posts []domain.Post
	after := ""
	for len(posts) < limit {
		page := limit - len(posts)
		if page > listingPageMax {
			page = listingPageMax
		}

		if err := ac.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		path := fmt.Sprintf("r/%s/hot?limit=%d&raw_json=1", sub, page)
		if after != "" {
			path += "&after=" + after
		}
		req, err := ac.client.NewRequest(http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var listing listingResponse
		if _, err := ac.client.Do(ctx, req, &listing); err != nil {
			return nil, fmt.Errorf("authenticated api error: %w", err)
		}

		batch := listing.posts()
		if len(batch) == 0 {
			break
		}
		posts = append(posts, batch...)

		after = listing.Data.After
		if after == "" {
			break
		}
	}
	return posts, nil
}

func (ac *APIClient) AddComment(ctx context.Context, post domain.Post, body string) error {
	if err := ac.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, _, err := ac.client.Comment.Submit(ctx, post.FullID, body); err != nil {
		return fmt.Errorf("submit comment on %s: %w", post.FullID, err)
	}
	return nil
}

func (ac *APIClient) SetFlair(ctx context.Context, post domain.Post, label, cssClass string) error {
	if err := ac.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("link", post.FullID)
	form.Set("text", label)
	form.Set("css_class", cssClass)

	path := fmt.Sprintf("r/%s/api/flair", post.Subreddit)
	req, err := ac.client.NewRequest(http.MethodPost, path, form)
	if err != nil {
		return err
	}
	if _, err := ac.client.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("set flair on %s: %w", post.FullID, err)
	}
	return nil
}

func (ac *APIClient) SendMessage(ctx context.Context, recipient, subject, body string) error {
	if err := ac.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := ac.client.Message.Send(ctx, &reddit.SendMessageRequest{
		To:      recipient,
		Subject: subject,
		Text:    body,
	}); err != nil {
		return fmt.Errorf("send message to %s: %w", recipient, err)
	}
	return nil
}
