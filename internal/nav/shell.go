// Package nav holds the navigation shell: a fixed link list and the mobile menu toggle.
package nav

type Link struct {
	Label string
	Href  string

	// MobileOnly links are only listed in the collapsible panel.
	MobileOnly bool
}

var links = []Link{
	{Label: "Home", Href: "/"},
	{Label: "Blog", Href: "/"},
	{Label: "Single Post", Href: "/post/1", MobileOnly: true},
	{Label: "Pages", Href: "/"},
	{Label: "Contact", Href: "/"},
}

// Shell is per-page UI state. The only mutable field is MenuOpen.
type Shell struct {
	MenuOpen bool
}

func NewShell() *Shell {
	return &Shell{}
}

func (s *Shell) Toggle() bool {
	s.MenuOpen = !s.MenuOpen
	return s.MenuOpen
}

// Select closes the menu and returns the link target.
func (s *Shell) Select(l Link) string {
	s.MenuOpen = false
	return l.Href
}

func (s *Shell) DesktopLinks() []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if !l.MobileOnly {
			out = append(out, l)
		}
	}
	return out
}

func (s *Shell) MobileLinks() []Link {
	out := make([]Link, len(links))
	copy(out, links)
	return out
}
