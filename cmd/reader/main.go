// Command reader prints the MetaBlog feed or a single post in the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/debemdeboas/metablog/internal/config"
	"github.com/debemdeboas/metablog/internal/content"
	"github.com/debemdeboas/metablog/internal/logger"
	"github.com/debemdeboas/metablog/internal/model"
	"github.com/debemdeboas/metablog/internal/view"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("63")).Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true).MarginTop(1)
	quoteStyle   = lipgloss.NewStyle().Italic(true).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).PaddingLeft(1)
)

const excerptLength = 100

type options struct {
	query       string
	post        string
	interactive bool
}

func renderFeed(w io.Writer, s view.FeedState) {
	switch {
	case s.Failed():
		fmt.Fprintln(w, errorStyle.Render("Oops!"))
		fmt.Fprintln(w, s.Message)
		return
	case s.Loading():
		fmt.Fprintln(w, mutedStyle.Render("Loading posts..."))
		return
	}

	if p := s.Featured; p != nil {
		fmt.Fprintln(w, badgeStyle.Render("Featured"))
		fmt.Fprintln(w, titleStyle.Render(p.Title))
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("User %d · %s", p.UserID, p.Path())))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, headingStyle.Render(config.AppConfig.Site.Tagline))
	if s.Searching() {
		fmt.Fprintln(w, mutedStyle.Render(s.ResultLabel()))
	}

	for _, p := range s.Posts {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render(fmt.Sprintf("#%-3d", p.ID)), titleStyle.Render(p.Title))
		fmt.Fprintf(w, "     %s\n", mutedStyle.Render(p.AuthorAlias()+" · "+model.Truncate(strings.ReplaceAll(p.Body, "\n", " "), excerptLength)))
	}

	if s.NoMatches() {
		fmt.Fprintln(w, errorStyle.Render("No posts found"))
		fmt.Fprintln(w, mutedStyle.Render("Try searching with different keywords"))
	}
}

func renderDetail(w io.Writer, s view.DetailState) {
	switch {
	case s.Failed():
		fmt.Fprintln(w, errorStyle.Render("Post Not Found"))
		fmt.Fprintln(w, s.Message)
		return
	case s.Loading():
		fmt.Fprintln(w, mutedStyle.Render("Loading post..."))
		return
	}

	p := s.Post
	fmt.Fprintln(w, badgeStyle.Render("Technology"))
	fmt.Fprintln(w, titleStyle.Render(p.Title))
	fmt.Fprintln(w, mutedStyle.Render(s.AuthorName()+" · "+p.ImageURL(1200, 600)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Body)

	if quote := model.Truncate(p.Body, view.DescriptionLength); quote != "" {
		fmt.Fprintln(w, quoteStyle.Render(strings.ReplaceAll(quote, "\n", " ")))
	}
}

func run(ctx context.Context, src content.Source, opts options, in io.Reader, out io.Writer) error {
	if opts.post != "" {
		id, err := model.ParsePostID(opts.post)
		if err != nil {
			return fmt.Errorf("invalid post id %q: %w", opts.post, err)
		}

		detail := view.NewDetail(ctx, src, id, nil)
		defer detail.Close()

		err = detail.Load(ctx)
		renderDetail(out, detail.Snapshot())
		return err
	}

	feed := view.NewFeed(ctx, src)
	defer feed.Close()

	feed.SetQuery(opts.query)
	if err := feed.Load(ctx); err != nil {
		renderFeed(out, feed.Snapshot())
		return err
	}
	renderFeed(out, feed.Snapshot())

	if !opts.interactive {
		return nil
	}

	fmt.Fprintln(out, "Type a search query and press enter. Type 'quit' to exit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("search> "))
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "quit" {
			return nil
		}

		feed.SetQuery(line)
		renderFeed(out, feed.Snapshot())
	}
}

func main() {
	var opts options
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.StringVar(&opts.query, "q", "", "filter posts by title")
	flag.StringVar(&opts.post, "post", "", "show a single post by id")
	flag.BoolVar(&opts.interactive, "i", false, "search interactively")
	flag.Parse()

	godotenv.Load()

	if *configPath == "" {
		*configPath = os.Getenv(config.EnvConfigPath)
	}
	if *configPath != "" {
		if err := config.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, config.ErrParseConfigFmt+"\n", err)
			os.Exit(1)
		}
	}

	log := logger.New(config.AppConfig.Logging.Level, config.AppConfig.Logging.Format)
	content.SetLogger(logger.Component(log, "content"))
	view.SetLogger(logger.Component(log, "view"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, content.NewFromConfig(config.AppConfig.Content), opts, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, view.ErrDiscarded) {
		os.Exit(1)
	}
}
