package cache

import "html/template"

// Process-wide caches of output derived from embedded assets and post bodies.
var (
	staticHashes     = NewCache[string, string]()
	syntaxStyles     = NewCache[string, template.CSS]()
	renderedMarkdown = NewCache[string, *RenderedContent]()
)

// GetStaticHash returns the ETag of an embedded static file by URL path.
func GetStaticHash(path string) (string, bool) {
	return staticHashes.Get(path)
}

func SetStaticHash(path, hash string) {
	staticHashes.Set(path, hash)
}

func GetSyntaxCSS(theme string) (template.CSS, bool) {
	return syntaxStyles.Get(theme)
}

func SetSyntaxCSS(theme string, css template.CSS) {
	syntaxStyles.Set(theme, css)
}

// RenderedContent is a post body rendered for one syntax theme.
type RenderedContent struct {
	HTML []byte
}

func renderedKey(contentHash, syntaxTheme string) string {
	return contentHash + ":" + syntaxTheme
}

func GetRenderedMarkdown(contentHash, syntaxTheme string) (*RenderedContent, bool) {
	return renderedMarkdown.Get(renderedKey(contentHash, syntaxTheme))
}

func SetRenderedMarkdown(contentHash, syntaxTheme string, html []byte) {
	renderedMarkdown.Set(renderedKey(contentHash, syntaxTheme), &RenderedContent{HTML: html})
}

func ClearRenderedMarkdownCache() {
	renderedMarkdown.Clear()
}
