package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/freeebooks/expiredbot/internal/domain"
)

// PublicClient reads the unauthenticated JSON listing. It cannot
// mutate anything, so it is only good for dry runs.
type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
}

func NewPublicClient(userAgent string) (*PublicClient, error) {
	return &PublicClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON Limit: 1 req / 2 seconds (Stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		baseURL:   "https://www.reddit.com",
	}, nil
}

func (pc *PublicClient) HotPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	var posts []domain.Post
	after := ""
	for len(posts) < limit {
		page := limit - len(posts)
		if page > listingPageMax {
			page = listingPageMax
		}

		listing, err := pc.fetchPage(ctx, sub, page, after)
		if err != nil {
			return nil, err
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

func (pc *PublicClient) fetchPage(ctx context.Context, sub string, limit int, after string) (*listingResponse, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d&raw_json=1", pc.baseURL, sub, limit)
	if after != "" {
		url += "&after=" + after
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", pc.userAgent)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (pc *PublicClient) AddComment(context.Context, domain.Post, string) error {
	return fmt.Errorf("public mode cannot comment; use BOT_MODE=api")
}

func (pc *PublicClient) SetFlair(context.Context, domain.Post, string, string) error {
	return fmt.Errorf("public mode cannot set flair; use BOT_MODE=api")
}

func (pc *PublicClient) SendMessage(context.Context, string, string, string) error {
	return fmt.Errorf("public mode cannot send messages; use BOT_MODE=api")
}
