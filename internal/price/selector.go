// Package price scrapes the advertised price of an ebook from the
// handful of retailer sites the bot understands.
package price

import (
	"regexp"
	"strings"
)

// Rule ties a set of URL prefixes to the regular expression whose first
// capture group holds the price on pages under those prefixes. Rules
// are checked in order and the first match wins, so more specific
// prefixes (e.g. Amazon's mobile pages) come before broader ones.
type Rule struct {
	Prefixes []string
	Pattern  *regexp.Regexp
}

// The supported retailers. This is deliberately a flat ordered list of
// literal prefix checks: the set of sites is small and changes rarely.
var rules = []Rule{
	{
		Prefixes: []string{"http://www.amazon.com/gp/aw/d/"},
		Pattern:  regexp.MustCompile(`<b>Price:</b>&nbsp;([^&]*)&nbsp;<br />`),
	},
	{
		Prefixes: []string{
			"http://www.amazon.com/",
			"https://www.amazon.com/",
			"http://amzn.com/",
			"https://amzn.com/",
			"http://www.amazon.co.uk/",
			"https://www.amazon.co.uk/",
			"http://www.amazon.ca/",
			"https://www.amazon.ca/",
		},
		Pattern: regexp.MustCompile(`\s+class="priceLarge"\s*>([^<]*)<`),
	},
	{
		Prefixes: []string{
			"http://www.smashwords.com/",
			"https://www.smashwords.com/",
		},
		// Matches only the panel that carries a literal "Price:" label;
		// books without one ("You set the price!") deliberately fall
		// through to human review.
		Pattern: regexp.MustCompile(`class="panel-title text-center">\s*Price:([^<]*)<`),
	},
	{
		Prefixes: []string{"http://www.barnesandnoble.com/"},
		Pattern:  regexp.MustCompile(`itemprop="price" data-bntrack="Price" data-bntrack-event="click">([^<]*)<`),
	},
	// Google Play works from residential connections but answers this
	// server with 403s, so the rule stays off until the bot moves.
	// {
	// 	Prefixes: []string{"https://play.google.com/"},
	// 	Pattern:  regexp.MustCompile(`<meta content="([^"]*)" itemprop="price">`),
	// },
	{
		Prefixes: []string{"http://bookshout.com"},
		Pattern:  regexp.MustCompile(`<span>Our Price:</span>([^<]*)</p>`),
	},
}

// SelectorFor returns the first rule whose prefix matches url, or nil
// when the site is not supported. A nil result means no fetch happens.
func SelectorFor(url string) *Rule {
	for i := range rules {
		for _, prefix := range rules[i].Prefixes {
			if strings.HasPrefix(url, prefix) {
				return &rules[i]
			}
		}
	}
	return nil
}

// Sites known to host only perpetually free content. Posts linking here
// never need a price check or human review.
var knownFreePrefixes = []string{
	"http://ebooks.adelaide.edu.au/",
	"http://www.gutenberg.org/",
	"http://gutenberg.org/",
	"https://archive.org/",
	"http://www.topfreebooks.org/",
	// Feedbooks' paid content lives under feedbooks.com/item/
	"http://www.feedbooks.com/book/",
	"http://www.feedbooks.com/userbook/",
	"https://librivox.org/",
	"https://www.librivox.org/",
	"http://podiobooks.com/",
	"http://quirkystories.com/",
	"https://openlibrary.org/",
}

// KnownFree reports whether url is on a site that only hosts
// permanently free ebooks.
func KnownFree(url string) bool {
	for _, prefix := range knownFreePrefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}
