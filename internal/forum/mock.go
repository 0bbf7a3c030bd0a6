package forum

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freeebooks/expiredbot/internal/domain"
)

// MockClient implements domain.Forum with canned posts, for local runs
// without credentials. Mutations are logged and dropped.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (mc *MockClient) HotPosts(_ context.Context, sub string, limit int) ([]domain.Post, error) {
	canned := []domain.Post{
		{
			Title:     "Pride and Prejudice",
			URL:       "http://www.gutenberg.org/ebooks/1342",
			Subreddit: sub,
		},
		{
			Title:     "Some Thriller That Was Free Yesterday",
			URL:       "http://www.amazon.com/dp/B00MOCK000",
			Subreddit: sub,
		},
		{
			Title:     "Indie Novel On An Unknown Storefront",
			URL:       "http://books.example.com/indie-novel",
			Subreddit: sub,
		},
	}

	var posts []domain.Post
	for i := 0; i < limit && i < len(canned); i++ {
		p := canned[i]
		p.FullID = fmt.Sprintf("t3_mock%d", i)
		p.Permalink = fmt.Sprintf("https://www.reddit.com/r/%s/comments/mock%d/", sub, i)
		posts = append(posts, p)
	}
	return posts, nil
}

func (mc *MockClient) AddComment(_ context.Context, post domain.Post, body string) error {
	slog.Info("mock: would comment", "post", post.FullID, "chars", len(body))
	return nil
}

func (mc *MockClient) SetFlair(_ context.Context, post domain.Post, label, cssClass string) error {
	slog.Info("mock: would set flair", "post", post.FullID, "label", label, "css_class", cssClass)
	return nil
}

func (mc *MockClient) SendMessage(_ context.Context, recipient, subject, _ string) error {
	slog.Info("mock: would send message", "to", recipient, "subject", subject)
	return nil
}
