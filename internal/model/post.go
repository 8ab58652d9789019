// Package model defines the posts, authors and page envelope rendered by the reader.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type PostID int

type UserID int

// ParsePostID parses a path segment into a PostID. Only positive integers are valid.
func ParsePostID(s string) (PostID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid post id %q: must be positive", s)
	}
	return PostID(n), nil
}

func (id PostID) String() string {
	return strconv.Itoa(int(id))
}

func (id UserID) String() string {
	return strconv.Itoa(int(id))
}

// Post is an immutable snapshot fetched from the content API.
type Post struct {
	ID     PostID `json:"id" validate:"gt=0"`
	UserID UserID `json:"userId" validate:"gt=0"`
	Title  string `json:"title" validate:"required"`
	Body   string `json:"body"`
}

// User is the author of a post. Only ID and Name are rendered.
type User struct {
	ID       UserID `json:"id" validate:"gt=0"`
	Name     string `json:"name" validate:"required"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
}

// Card aliases used while an author is unknown.
var authorAliases = []string{
	"Jason Francisco",
	"Tracey Wilson",
	"Ernie Smith",
	"Eric Smith",
	"Elizabeth Slavin",
}

const (
	imagePool  = 50
	avatarPool = 70
)

func (p *Post) Path() string {
	return "/post/" + p.ID.String()
}

func (p *Post) imageSeed() int {
	return int(p.ID)%imagePool + 1
}

// ImageURL returns a stable cover image for the post.
func (p *Post) ImageURL(w, h int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", p.imageSeed(), w, h)
}

// SecondaryImageURL returns the inline image shown halfway through the article.
func (p *Post) SecondaryImageURL(w, h int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", p.imageSeed()+1, w, h)
}

func (p *Post) AvatarURL(size int) string {
	return fmt.Sprintf("https://i.pravatar.cc/%d?img=%d", size, int(p.UserID)%avatarPool+1)
}

// HeroImageURL is the featured banner. It is seeded by the raw post id, unlike
// the card and article images.
func (p *Post) HeroImageURL(w, h int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", int(p.ID), w, h)
}

// HeroAvatarURL is the featured byline avatar, keyed by the raw user id.
func (p *Post) HeroAvatarURL(size int) string {
	return fmt.Sprintf("https://i.pravatar.cc/%d?img=%d", size, int(p.UserID))
}

func (p *Post) AuthorAlias() string {
	return authorAliases[int(p.UserID)%len(authorAliases)]
}

// Excerpt returns at most n runes of the body.
func (p *Post) Excerpt(n int) string {
	return Truncate(p.Body, n)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
