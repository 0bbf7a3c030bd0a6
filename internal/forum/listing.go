package forum

import (
	"strings"

	"github.com/freeebooks/expiredbot/internal/domain"
)

// Reddit's listing shape, shared by the authenticated and public
// clients. Only the fields the pipeline needs are declared.
// listingPageMax is Reddit's cap on a single listing page; deeper
// listings are fetched with the "after" cursor.
const listingPageMax = 100

type listingResponse struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data struct {
				Name              string `json:"name"` // fullname, e.g. t3_abc
				Title             string `json:"title"`
				URL               string `json:"url"`
				Permalink         string `json:"permalink"`
				LinkFlairCSSClass string `json:"link_flair_css_class"`
				Subreddit         string `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (lr *listingResponse) posts() []domain.Post {
	var posts []domain.Post
	for _, child := range lr.Data.Children {
		d := child.Data
		permalink := d.Permalink
		if strings.HasPrefix(permalink, "/") {
			permalink = "https://www.reddit.com" + permalink
		}
		posts = append(posts, domain.Post{
			FullID:     d.Name,
			Title:      d.Title,
			URL:        strings.TrimSpace(d.URL),
			Permalink:  permalink,
			FlairClass: d.LinkFlairCSSClass,
			Subreddit:  d.Subreddit,
		})
	}
	return posts
}
