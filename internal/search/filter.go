// Package search filters the feed by title and debounces the search input.
package search

import (
	"strings"

	"github.com/debemdeboas/metablog/internal/model"
)

// Filter returns the posts whose title contains query, ignoring case, in their original order.
// A blank query returns posts unchanged. The input slice is never modified.
func Filter(posts []model.Post, query string) []model.Post {
	if IsBlank(query) {
		return posts
	}

	needle := strings.ToLower(query)
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}

func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}
