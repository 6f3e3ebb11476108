// Package view turns the post list into renderable pages and routes the
// actions a page offers.
package view

import (
	"slices"
	"strings"

	"github.com/gosimple/slug"

	"github.com/starford/inkwell/internal/models"
)

// Placeholder is shown instead of cards when there are no posts.
const Placeholder = "No posts yet. Add one!"

// ExcerptLen is the number of characters kept in a card excerpt.
const ExcerptLen = 180

// Page is a rendered-to-be post list.
type Page struct {
	Cards       []Card
	Empty       bool
	Placeholder string
	Status      string
}

// Card is one post on a page.
type Card struct {
	ID      string
	Anchor  string
	Title   string
	Date    string
	Excerpt string
	Actions []Action
}

// Sort returns a copy of posts ordered by date, latest first. Dates are
// compared as plain strings; posts with equal dates keep their input order.
func Sort(posts []models.Post) []models.Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b models.Post) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out
}

// Excerpt shortens content to ExcerptLen characters followed by an ellipsis.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLen {
		return content
	}
	return string(runes[:ExcerptLen]) + "…"
}

// Anchor is a stable, URL-safe fragment for a post.
func Anchor(p models.Post) string {
	base := slug.Make(p.Title)
	if base == "" {
		base = "post"
	}
	return base + "-" + slug.Make(p.ID)
}

// Build lays out posts as cards with Edit and Delete actions.
func Build(posts []models.Post) Page {
	if len(posts) == 0 {
		return Page{Empty: true, Placeholder: Placeholder}
	}
	sorted := Sort(posts)
	cards := make([]Card, len(sorted))
	for i, p := range sorted {
		cards[i] = Card{
			ID:      p.ID,
			Anchor:  Anchor(p),
			Title:   p.Title,
			Date:    p.Date,
			Excerpt: Excerpt(p.Content),
			Actions: []Action{
				{Command: CommandEdit, PostID: p.ID},
				{Command: CommandDelete, PostID: p.ID},
			},
		}
	}
	return Page{Cards: cards}
}
