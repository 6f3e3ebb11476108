// Package models defines the domain types for inkwell.
package models

import "time"

// Post is a blog entry as the client sees it.
type Post struct {
	ID      string `json:"id" yaml:"id,omitempty"`
	Title   string `json:"title" yaml:"title"`
	Date    string `json:"date" yaml:"date"`
	Content string `json:"content" yaml:"content"`
}

// Fields are the user-editable parts of a post.
type Fields struct {
	Title   string `json:"title" yaml:"title"`
	Date    string `json:"date" yaml:"date"`
	Content string `json:"content" yaml:"content"`
}

// Fields returns the editable part of p.
func (p Post) Fields() Fields {
	return Fields{Title: p.Title, Date: p.Date, Content: p.Content}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title   *string `json:"title,omitempty"`
	Date    *string `json:"date,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Apply returns p with the non-nil fields of patch written over it.
func (patch Patch) Apply(p Post) Post {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	return p
}

// Record is a stored post together with the timestamps assigned by the store.
type Record struct {
	Post
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
