package config

// User-facing messages. The underlying causes are only logged.
const (
	MsgFeedLoadFailed = "Failed to load posts. Please try again later."
	MsgPostLoadFailed = "Failed to load post. Please try again later."
	MsgPostNotFound   = "The post you are looking for does not exist."

	ErrParseConfigFmt = "Failed to load config: %v"
	ErrRenderPageFmt  = "Failed to render page: %v"
)
