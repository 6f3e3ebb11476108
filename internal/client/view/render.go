package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/inkwell/internal/models"
)

// PageRenderer writes a page in some output format.
type PageRenderer interface {
	RenderPage(w io.Writer, p Page) error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	pillStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// TextRenderer writes a styled terminal listing.
type TextRenderer struct {
	// ShowActions appends the Edit/Delete hints with the post id.
	ShowActions bool
}

// RenderPage implements PageRenderer.
func (r TextRenderer) RenderPage(w io.Writer, p Page) error {
	var b strings.Builder
	if p.Status != "" {
		b.WriteString(statusStyle.Render("status: "+p.Status) + "\n\n")
	}
	if p.Empty {
		b.WriteString(pillStyle.Render(p.Placeholder) + "\n")
	}
	for i, c := range p.Cards {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(c.Title) + "\n")
		b.WriteString(dateStyle.Render(c.Date) + "\n")
		b.WriteString(c.Excerpt + "\n")
		if r.ShowActions {
			labels := make([]string, len(c.Actions))
			for j, a := range c.Actions {
				labels[j] = a.Command.String()
			}
			b.WriteString(actionStyle.Render(fmt.Sprintf("[%s] %s", strings.Join(labels, "] ["), c.ID)) + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Posts</title></head>
<body>
{{- if .Status}}
<p class="status">{{.Status}}</p>
{{- end}}
<section id="posts">
{{- if .Empty}}
<p class="pill">{{.Placeholder}}</p>
{{- end}}
{{- range .Cards}}
<article class="post" id="{{.Anchor}}">
<h3>{{.Title}}</h3>
<time datetime="{{.Date}}">{{.Date}}</time>
<p>{{.Excerpt}}</p>
<div class="actions">
{{- range .Actions}}
<button data-action="{{.Command}}" data-id="{{.PostID}}">{{.Command}}</button>
{{- end}}
</div>
</article>
{{- end}}
</section>
</body>
</html>
`))

// HTMLRenderer writes a static HTML document with all text escaped.
type HTMLRenderer struct{}

// RenderPage implements PageRenderer.
func (HTMLRenderer) RenderPage(w io.Writer, p Page) error {
	return pageTemplate.Execute(w, p)
}

// Writer builds a page from posts and hands it to a PageRenderer. It
// satisfies the sync controller's Renderer.
type Writer struct {
	Out      io.Writer
	Renderer PageRenderer
	// Status, if set, supplies the status line shown above the list.
	Status func() string
}

// Render builds and writes a page for posts.
func (w *Writer) Render(posts []models.Post) error {
	page := Build(posts)
	if w.Status != nil {
		page.Status = w.Status()
	}
	return w.Renderer.RenderPage(w.Out, page)
}
