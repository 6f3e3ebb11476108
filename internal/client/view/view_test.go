package view

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/inkwell/internal/models"
)

func TestSortByDateDescStable(t *testing.T) {
	in := []models.Post{
		{ID: "a", Date: "2026-01-01"},
		{ID: "b", Date: "2026-03-01"},
		{ID: "c", Date: "2026-01-01"},
		{ID: "d", Date: "2026-02-15"},
	}
	got := Sort(in)

	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.Equal(t, "a", in[0].ID, "input left untouched")
}

func TestSortIsLexicographic(t *testing.T) {
	// "2026-9-01" > "2026-10-01" as strings, so it sorts first.
	got := Sort([]models.Post{
		{ID: "oct", Date: "2026-10-01"},
		{ID: "sep", Date: "2026-9-01"},
	})
	assert.Equal(t, "sep", got[0].ID)
}

func TestExcerpt(t *testing.T) {
	short := strings.Repeat("a", 180)
	assert.Equal(t, short, Excerpt(short))
	assert.Equal(t, "", Excerpt(""))

	long := strings.Repeat("b", 181)
	got := Excerpt(long)
	assert.Equal(t, strings.Repeat("b", 180)+"…", got)

	// characters, not bytes
	multi := strings.Repeat("é", 200)
	got = Excerpt(multi)
	assert.Equal(t, 181, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, strings.Repeat("é", 180), Excerpt(strings.Repeat("é", 180)))
}

func TestBuildEmpty(t *testing.T) {
	for _, posts := range [][]models.Post{nil, {}} {
		p := Build(posts)
		assert.True(t, p.Empty)
		assert.Equal(t, "No posts yet. Add one!", p.Placeholder)
		assert.Empty(t, p.Cards)
	}
}

func TestBuildCards(t *testing.T) {
	p := Build([]models.Post{
		{ID: "1", Title: "Older", Date: "2026-01-01", Content: "x"},
		{ID: "2", Title: "Newer Post", Date: "2026-02-01", Content: strings.Repeat("z", 200)},
	})
	require.Len(t, p.Cards, 2)
	assert.False(t, p.Empty)

	first := p.Cards[0]
	assert.Equal(t, "2", first.ID)
	assert.Equal(t, "newer-post-2", first.Anchor)
	assert.True(t, strings.HasSuffix(first.Excerpt, "…"))
	assert.Equal(t, []Action{
		{Command: CommandEdit, PostID: "2"},
		{Command: CommandDelete, PostID: "2"},
	}, first.Actions)
}

func TestAnchorFallback(t *testing.T) {
	assert.Equal(t, "post-abc", Anchor(models.Post{ID: "abc", Title: "!!!"}))
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	var edited, deleted string
	d.Handle(CommandEdit, func(_ context.Context, id string) error { edited = id; return nil })
	d.Handle(CommandDelete, func(_ context.Context, id string) error { deleted = id; return nil })

	require.NoError(t, d.Dispatch(context.Background(), Action{Command: CommandEdit, PostID: "7"}))
	require.NoError(t, d.Dispatch(context.Background(), Action{Command: CommandDelete, PostID: "8"}))
	assert.Equal(t, "7", edited)
	assert.Equal(t, "8", deleted)

	err := d.Dispatch(context.Background(), Action{Command: Command(99), PostID: "x"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestDispatcherPropagatesHandlerError(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	d.Handle(CommandDelete, func(context.Context, string) error { return boom })
	assert.ErrorIs(t, d.Dispatch(context.Background(), Action{Command: CommandDelete}), boom)
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand("edit")
	require.NoError(t, err)
	assert.Equal(t, CommandEdit, c)
	c, err = ParseCommand("Delete")
	require.NoError(t, err)
	assert.Equal(t, CommandDelete, c)
	_, err = ParseCommand("publish")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, "Edit", CommandEdit.String())
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, Renderer: TextRenderer{ShowActions: true}, Status: func() string { return "synced" }}
	require.NoError(t, w.Render([]models.Post{{ID: "1", Title: "Hello", Date: "2026-01-01", Content: "Body"}}))

	out := buf.String()
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "2026-01-01")
	assert.Contains(t, out, "Body")
	assert.Contains(t, out, "synced")
	assert.Contains(t, out, "Edit")
	assert.NotContains(t, out, Placeholder)
}

func TestTextRendererEmptyShowsOnlyPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, Renderer: TextRenderer{ShowActions: true}}
	require.NoError(t, w.Render(nil))
	assert.Equal(t, Placeholder, strings.TrimSpace(stripANSI(buf.String())))
}

func TestHTMLRendererEscapes(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, Renderer: HTMLRenderer{}}
	require.NoError(t, w.Render([]models.Post{
		{ID: "1", Title: "<script>alert(1)</script>", Date: "2026-01-01", Content: "a & b"},
	}))

	out := buf.String()
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "a &amp; b")
	assert.Contains(t, out, `data-action="Edit" data-id="1"`)
	assert.Contains(t, out, `data-action="Delete" data-id="1"`)
}

func TestHTMLRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTMLRenderer{}.RenderPage(&buf, Build(nil)))
	assert.Contains(t, buf.String(), `<p class="pill">No posts yet. Add one!</p>`)
	assert.NotContains(t, buf.String(), "<article")
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
