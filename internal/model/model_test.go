package model

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/debemdeboas/metablog/internal/config"
)

func TestParsePostID(t *testing.T) {
	tests := []struct {
		input   string
		want    PostID
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePostID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestPostPresentation(t *testing.T) {
	post := &Post{ID: 51, UserID: 3, Title: "Travel light", Body: "body"}

	if post.Path() != "/post/51" {
		t.Errorf("Expected path '/post/51', got %s", post.Path())
	}
	if got := post.ImageURL(600, 400); got != "https://picsum.photos/seed/2/600/400" {
		t.Errorf("Unexpected image URL %s", got)
	}
	if got := post.SecondaryImageURL(1200, 600); got != "https://picsum.photos/seed/3/1200/600" {
		t.Errorf("Unexpected secondary image URL %s", got)
	}
	if got := post.AvatarURL(40); got != "https://i.pravatar.cc/40?img=4" {
		t.Errorf("Unexpected avatar URL %s", got)
	}
	if got := post.HeroImageURL(1200, 600); got != "https://picsum.photos/seed/51/1200/600" {
		t.Errorf("Unexpected hero image URL %s", got)
	}
	if got := post.HeroAvatarURL(40); got != "https://i.pravatar.cc/40?img=3" {
		t.Errorf("Unexpected hero avatar URL %s", got)
	}
	if got := post.AuthorAlias(); got != "Eric Smith" {
		t.Errorf("Expected alias 'Eric Smith', got %s", got)
	}
}

func TestAuthorAliasRotation(t *testing.T) {
	seen := map[string]bool{}
	for uid := UserID(1); uid <= 10; uid++ {
		p := &Post{UserID: uid}
		seen[p.AuthorAlias()] = true
	}
	if len(seen) != len(authorAliases) {
		t.Errorf("Expected all %d aliases in rotation, got %d", len(authorAliases), len(seen))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 10, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"zero", "abc", 0, ""},
		{"runes not bytes", "ñáéíóú", 2, "ñá"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	post := &Post{Body: strings.Repeat("x", 200)}
	if len(post.Excerpt(150)) != 150 {
		t.Errorf("Expected 150 rune excerpt, got %d", len(post.Excerpt(150)))
	}
}

func TestPageData(t *testing.T) {
	req := httptest.NewRequest("GET", "/post/1", nil)
	pd := NewPageData(req)

	if pd.SiteName != config.AppConfig.Site.Name {
		t.Errorf("Expected site name %q, got %q", config.AppConfig.Site.Name, pd.SiteName)
	}
	if pd.Title != config.AppConfig.Site.Name {
		t.Errorf("Expected default title to be the site name, got %q", pd.Title)
	}
	if pd.PageURL != "/post/1" {
		t.Errorf("Expected page URL '/post/1', got %q", pd.PageURL)
	}
	if pd.Nav == nil || pd.Nav.MenuOpen {
		t.Error("Expected a closed navigation shell")
	}
	if pd.SyntaxCSS == "" {
		t.Error("Expected syntax CSS to be generated")
	}

	pd.SetTitle("Hello" + TitleSuffix)
	pd.SetDescription("desc")
	if pd.Title != "Hello - MetaBlog" || pd.Description != "desc" {
		t.Errorf("Expected metadata to be updated, got %q / %q", pd.Title, pd.Description)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2022, time.August, 20, 10, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "August 20, 2022" {
		t.Errorf("Expected 'August 20, 2022', got %q", got)
	}
}
