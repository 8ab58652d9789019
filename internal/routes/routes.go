// Package routes defines HTTP route constants for the application.
package routes

const (
	// Static and assets
	RobotsPath        = "/robots.txt"
	ThemeOppositeIcon = "/theme/opposite-icon"
	ThemeToggle       = "/theme/toggle"
	SyntaxThemeSet    = "/syntax-theme/set"
	SyntaxThemeGet    = "/syntax-theme/{theme}"

	// Pages
	RootPath = "/"
	PostPath = "/post/{id}"

	// Partials
	PartialsFeed = "/partials/feed"
	NavToggle    = "/nav/toggle"
	Newsletter   = "/newsletter"

	// Live search
	SSEPath    = "/sse"
	SearchPath = "/search"
)
