package config

const (
	HCType         = "Content-Type"
	HETag          = "ETag"
	HCacheControl  = "Cache-Control"
	HVary          = "Vary"
	HAcceptEnc     = "Accept-Encoding"
	HContentEnc    = "Content-Encoding"
	HContentLength = "Content-Length"
	HHxRequest     = "Hx-Request"
	HHxTrigger     = "Hx-Trigger"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html; charset=utf-8"
	CTypeText = "text/plain; charset=utf-8"
	CTypeSSE  = "text/event-stream"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieTheme       = "theme"
	CookieSyntaxTheme = "syntax-theme"
)

const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvContentAPIURL = "CONTENT_API_URL"

	DefaultConfigPath = "config.yaml"
)
