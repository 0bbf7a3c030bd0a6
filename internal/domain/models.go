package domain

import "context"

// Decision is the outcome of examining a single submission.
type Decision string

const (
	DecisionIgnore      Decision = "ignore"
	DecisionExpired     Decision = "expired"
	DecisionNeedsReview Decision = "needs_review"
)

// Post is the clean view of a forum submission used by the pipeline.
type Post struct {
	FullID     string `json:"full_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Permalink  string `json:"permalink"`
	FlairClass string `json:"flair_class,omitempty"`
	Subreddit  string `json:"subreddit"`
	Rank       int    `json:"rank"`

	// Price is filled in by the pipeline when the post turns out to be
	// paid, so the digest can show what the book now costs.
	Price string `json:"price,omitempty"`
}

// Forum defines the capabilities the bot needs from the forum API.
type Forum interface {
	HotPosts(ctx context.Context, subreddit string, limit int) ([]Post, error)
	AddComment(ctx context.Context, post Post, body string) error
	SetFlair(ctx context.Context, post Post, label, cssClass string) error
	SendMessage(ctx context.Context, recipient, subject, body string) error
}
