package main

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/metablog/internal/cache"
	"github.com/debemdeboas/metablog/internal/config"
	"github.com/debemdeboas/metablog/internal/content"
	"github.com/debemdeboas/metablog/internal/live"
	"github.com/debemdeboas/metablog/internal/logger"
	"github.com/debemdeboas/metablog/internal/model"
	"github.com/debemdeboas/metablog/internal/nav"
	"github.com/debemdeboas/metablog/internal/render"
	"github.com/debemdeboas/metablog/internal/routes"
	"github.com/debemdeboas/metablog/internal/sse"
	"github.com/debemdeboas/metablog/internal/theme"
	"github.com/debemdeboas/metablog/internal/util"
	"github.com/debemdeboas/metablog/internal/util/compression"
	"github.com/debemdeboas/metablog/internal/view"
)

//go:embed static/* templates/*
var assets embed.FS

var log = zerolog.Nop()

var contentSource content.Source

var clients = sse.NewSSEClients()

var hub *live.Hub

var validate = validator.New()

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		fmt.Fprintf(os.Stderr, config.ErrParseConfigFmt+"\n", err)
		os.Exit(1)
	}

	log = logger.New(config.AppConfig.Logging.Level, config.AppConfig.Logging.Format)
	config.SetLogger(logger.Component(log, "config"))
	content.SetLogger(logger.Component(log, "content"))
	view.SetLogger(logger.Component(log, "view"))
	render.SetLogger(logger.Component(log, "render"))
	live.SetLogger(logger.Component(log, "live"))

	handler := setup(content.NewFromConfig(config.AppConfig.Content))

	addr := config.AppConfig.Server.Host + ":" + config.AppConfig.Server.Port
	log.Info().
		Str("addr", addr).
		Str("api", config.AppConfig.Content.APIBaseURL).
		Msg("Starting server")

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// setup wires the content source and returns the full middleware chain.
func setup(src content.Source) http.Handler {
	contentSource = src
	hub = live.NewHub(src, clients, config.AppConfig.Search.Debounce(), renderResults)

	static, _ := fs.Sub(assets, config.StaticLocalDir)
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if data, err := fs.ReadFile(static, path); err == nil {
			cache.SetStaticHash(config.StaticUrlPath+path, util.ETag(data))
		}
		return nil
	})

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, config.CTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})

	mux.HandleFunc(routes.ThemeOppositeIcon, func(w http.ResponseWriter, r *http.Request) {
		currTheme := r.URL.Query().Get("theme")
		if currTheme == "" {
			http.Error(w, "theme required", http.StatusBadRequest)
			return
		}

		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(theme.GetThemeIcon(currTheme)))
	})

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.HandleFunc(routes.PostPath, servePost)
	mux.HandleFunc(routes.PartialsFeed, serveFeedPartial)
	mux.HandleFunc(routes.NavToggle, serveNavToggle)
	mux.HandleFunc(routes.Newsletter, serveNewsletter)
	mux.HandleFunc(routes.ThemeToggle, serveThemePostToggle)
	mux.HandleFunc(routes.SyntaxThemeSet, serveSyntaxThemePostSet)
	mux.HandleFunc(routes.SyntaxThemeGet, serveSyntaxThemeGetTheme)
	mux.HandleFunc(routes.SSEPath, eventsHandler)
	mux.HandleFunc(routes.SearchPath, serveSearch)
	mux.HandleFunc(routes.RootPath, serveIndex)

	securedMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath {
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	})

	return cacheIt(compression.Middleware(securedMux, routes.SSEPath).ServeHTTP)
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set(config.HVary, "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)

			if r.Header.Get("If-None-Match") == hash {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}

var templateFuncs = template.FuncMap{
	"excerpt":  model.Truncate,
	"safeHTML": safeHTML,
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func parseTemplates(pages ...string) (*template.Template, error) {
	files := make([]string, 0, len(pages)+1)
	for _, p := range pages {
		if p != config.TemplatePartials {
			files = append(files, config.TemplatesLocalDir+"/"+p)
		}
	}
	files = append(files, config.TemplatesLocalDir+"/"+config.TemplatePartials)

	return template.New(pages[0]).Funcs(templateFuncs).ParseFS(assets, files...)
}

func executeTemplate(w http.ResponseWriter, status int, name string, data any, pages ...string) {
	tmpl, err := parseTemplates(pages...)
	if err != nil {
		log.Error().Err(err).Strs("templates", pages).Msg("Error parsing templates")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Error executing template")
		http.Error(w, fmt.Sprintf(config.ErrRenderPageFmt, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

type feedData struct {
	State   view.FeedState
	Session string
	Tagline string
	Date    string
}

func newFeedData(state view.FeedState) feedData {
	return feedData{
		State:   state,
		Tagline: config.AppConfig.Site.Tagline,
		Date:    model.FormatDate(time.Now()),
	}
}

// renderResults renders the search result block pushed to live sessions.
func renderResults(state view.FeedState) (string, error) {
	tmpl, err := parseTemplates(config.TemplatePartials)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "feed-results", newFeedData(state)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routes.RootPath {
		http.NotFound(w, r)
		return
	}

	data := struct {
		*model.PageData
		FeedURL string
	}{
		PageData: model.NewPageData(r),
		FeedURL:  routes.PartialsFeed,
	}
	if q := r.URL.Query().Get("q"); q != "" {
		data.FeedURL += "?q=" + url.QueryEscape(q)
	}

	w.Header().Set(config.HETag, util.ETag([]byte(data.Theme+data.SyntaxTheme+data.FeedURL)))
	executeTemplate(w, http.StatusOK, config.TemplateLayout, data, config.TemplateLayout, config.TemplateIndex)
}

// serveFeedPartial loads the feed once and renders its body. It is also the Try Again target.
// A ready feed is handed to the hub so the page's live session searches the same baseline.
func serveFeedPartial(w http.ResponseWriter, r *http.Request) {
	feed := view.NewFeed(context.Background(), contentSource)
	feed.SetQuery(r.URL.Query().Get("q"))
	feed.Load(r.Context())

	state := feed.Snapshot()
	data := newFeedData(state)

	status := http.StatusOK
	switch {
	case state.Ready():
		data.Session = hub.Prepare(feed).ID
	case state.Failed():
		feed.Close()
		if r.Header.Get(config.HHxRequest) == "" {
			status = http.StatusBadGateway
		}
	default:
		feed.Close()
	}

	executeTemplate(w, status, "feed-body", data, config.TemplatePartials)
}

func servePost(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParsePostID(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	pd := model.NewPageData(r)
	detail := view.NewDetail(r.Context(), contentSource, id, pd)
	defer detail.Close()

	err = detail.Load(r.Context())
	state := detail.Snapshot()

	data := struct {
		*model.PageData
		Detail view.DetailState
		Body   template.HTML
		Notice string
	}{
		PageData: pd,
		Detail:   state,
	}

	status := http.StatusOK
	switch {
	case state.Failed():
		status = http.StatusBadGateway
		if content.IsNotFound(err) {
			status = http.StatusNotFound
			data.Notice = config.MsgPostNotFound
		}
	case state.Ready():
		data.Body = template.HTML(render.RenderMarkdownCached([]byte(state.Post.Body), pd.SyntaxTheme))
	}

	executeTemplate(w, status, config.TemplateLayout, data, config.TemplateLayout, config.TemplatePost)
}

type navData struct {
	Nav       *nav.Shell
	SiteName  string
	ThemeIcon string
}

func serveNavToggle(w http.ResponseWriter, r *http.Request) {
	shell := nav.NewShell()
	shell.MenuOpen = r.URL.Query().Get("open") == "true"
	shell.Toggle()

	data := navData{
		Nav:       shell,
		SiteName:  config.AppConfig.Site.Name,
		ThemeIcon: theme.GetThemeIcon(theme.GetThemeFromRequest(r)),
	}
	executeTemplate(w, http.StatusOK, "nav", data, config.TemplatePartials)
}

type newsletterData struct {
	Email      string
	Error      string
	Subscribed bool
}

func serveNewsletter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if err := validate.Var(email, "required,email"); err != nil {
		executeTemplate(w, http.StatusUnprocessableEntity, "newsletter", newsletterData{
			Email: email,
			Error: "Please enter a valid email address.",
		}, config.TemplatePartials)
		return
	}

	log.Info().Str("email", email).Msg("Newsletter subscription")
	executeTemplate(w, http.StatusOK, "newsletter", newsletterData{Subscribed: true}, config.TemplatePartials)
}

func serveSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	session := r.FormValue("session")
	if err := hub.Type(session, r.FormValue("q")); err != nil {
		if errors.Is(err, live.ErrUnknownSession) {
			http.Error(w, "Unknown session", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func serveThemePostToggle(w http.ResponseWriter, r *http.Request) {
	newTheme := theme.Opposite(theme.GetThemeFromRequest(r))

	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: newTheme,
		Path:  "/",
	})

	syntaxTheme := theme.GetDefaultSyntaxTheme(newTheme)
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && theme.IsSyntaxTheme(cookie.Value) {
		syntaxTheme = cookie.Value
	}

	w.Header().Set(config.HHxTrigger, fmt.Sprintf(`{"themeChanged":{"value":"%s","syntaxTheme":"%s"}}`, newTheme, syntaxTheme))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}

func serveSyntaxThemePostSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.FormValue("syntax-theme-select")
	if currTheme == "" || !theme.IsSyntaxTheme(currTheme) {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    currTheme,
		Path:     "/",
		HttpOnly: true,
	})

	writeSyntaxCSS(w, currTheme)
}

func serveSyntaxThemeGetTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.PathValue("theme")
	if !theme.IsSyntaxTheme(currTheme) {
		http.NotFound(w, r)
		return
	}

	writeSyntaxCSS(w, currTheme)
}

func writeSyntaxCSS(w http.ResponseWriter, name string) {
	themeStyle := []byte(theme.GenerateSyntaxCSS(name))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ETag(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}

// eventsHandler streams search results for one live session until the browser leaves.
func eventsHandler(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		http.Error(w, "Session parameter required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := sse.NewClient(session)
	clients.Add(client)
	defer clients.Delete(client)

	s, err := hub.Open(r.Context(), session, r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer hub.Close(s)

	w.Header().Set(config.HCType, config.CTypeSSE)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	sse.Event{Name: "connected", Data: "SSE connection established"}.WriteTo(w)
	flusher.Flush()

	log.Debug().Str("session", session).Msg("SSE client connected")
	defer log.Debug().Str("session", session).Msg("SSE client disconnected")

	notify := r.Context().Done()
	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			msg.WriteTo(w)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}
