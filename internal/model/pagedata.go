package model

import (
	"html/template"
	"net/http"
	"time"

	"github.com/debemdeboas/metablog/internal/config"
	"github.com/debemdeboas/metablog/internal/nav"
	"github.com/debemdeboas/metablog/internal/theme"
)

const TitleSuffix = " - MetaBlog"

type PageData struct {
	SiteName string

	PageURL string

	// Document metadata. Detail pages overwrite these through SetTitle/SetDescription.
	Title       string
	Description string

	Theme string

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string

	Nav *nav.Shell

	Date string
}

func NewPageData(r *http.Request) *PageData {
	syntaxtheme := theme.GetSyntaxThemeFromRequest(r)
	return &PageData{
		SiteName:     config.AppConfig.Site.Name,
		PageURL:      r.URL.Path,
		Title:        config.AppConfig.Site.Name,
		Description:  config.AppConfig.Site.Description,
		Theme:        theme.GetThemeFromRequest(r),
		SyntaxTheme:  syntaxtheme,
		SyntaxThemes: theme.GetSyntaxThemes(),
		SyntaxCSS:    theme.GenerateSyntaxCSS(syntaxtheme),
		Nav:          nav.NewShell(),
		Date:         FormatDate(time.Now()),
	}
}

func (pd *PageData) ThemeIcon() string {
	return theme.GetThemeIcon(pd.Theme)
}

func (pd *PageData) SetTitle(title string) {
	pd.Title = title
}

func (pd *PageData) SetDescription(description string) {
	pd.Description = description
}

// FormatDate renders dates the way the cards show them, e.g. "August 20, 2022".
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
