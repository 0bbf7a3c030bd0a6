// Package digest formats run summaries for the moderators.
package digest

import (
	"fmt"
	"strings"

	"github.com/freeebooks/expiredbot/internal/domain"
)

// FormatFunc renders one post into a single digest entry.
type FormatFunc func(domain.Post) string

// Build renders posts through format and fills template, which must
// have slots for the count, a plural "s", and the joined entries.
func Build(posts []domain.Post, format FormatFunc, template string) string {
	entries := make([]string, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, format(post))
	}
	return fmt.Sprintf(template, len(posts), plural(len(posts)), strings.Join(entries, "\n\n"))
}

// Expired summarizes the posts marked expired this run. On a dry run
// the mod log has nothing to show, so every post is listed in full;
// otherwise the digest just points at the log.
func Expired(posts []domain.Post, dryRun bool) string {
	if dryRun {
		return Build(posts,
			func(p domain.Post) string {
				return fmt.Sprintf("#%d: [%s](%s) (%s)", p.Rank, p.Title, p.Permalink, p.Price)
			},
			"Marked %d submission%s as expired:\n\n%s")
	}
	return fmt.Sprintf("Marked %d submission%s as expired. See the "+
		"[moderation log]"+
		"(http://www.reddit.com/r/FreeEBOOKS/about/log/?mod=expired_link_bot) "+
		"for details.", len(posts), plural(len(posts)))
}

// NeedsReview summarizes the posts the bot could not classify.
func NeedsReview(posts []domain.Post) string {
	return Build(posts,
		func(p domain.Post) string {
			return fmt.Sprintf("#%d: ([direct link](%s)) [%s](%s)", p.Rank, p.URL, p.Title, p.Permalink)
		},
		"Human review needed for %d new submission%s:\n\n%s")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
