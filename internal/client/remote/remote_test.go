package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/inkwell/internal/models"
)

type captured struct {
	method string
	path   string
	raw    string
	query  string
	auth   string
	ctype  string
	body   map[string]string
}

func server(t *testing.T, status int, reply string) (*Client, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method, c.path = r.Method, r.URL.Path
		c.raw, c.query = r.URL.EscapedPath(), r.URL.RawQuery
		c.auth = r.Header.Get("Authorization")
		c.ctype = r.Header.Get("Content-Type")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Token: "tok"}), c
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "m1", normalize(wirePost{MongoID: "m1", Title: "T"}).ID)
	assert.Equal(t, "p1", normalize(wirePost{ID: "p1"}).ID)
	assert.Equal(t, "m1", normalize(wirePost{MongoID: "m1", ID: "p1"}).ID)
}

func TestListNormalizesIDs(t *testing.T) {
	client, c := server(t, http.StatusOK, `[
		{"_id":"a1","title":"A","date":"2026-01-01","content":"x","createdAt":"2026-01-01T00:00:00Z"},
		{"id":"b2","title":"B","date":"2026-01-02","content":"y"}
	]`)

	posts, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Post{
		{ID: "a1", Title: "A", Date: "2026-01-01", Content: "x"},
		{ID: "b2", Title: "B", Date: "2026-01-02", Content: "y"},
	}, posts)
	assert.Equal(t, http.MethodGet, c.method)
	assert.Equal(t, "/api/posts", c.path)
	assert.Equal(t, "Bearer tok", c.auth)
}

func TestCreate(t *testing.T) {
	client, c := server(t, http.StatusCreated, `{"_id":"n1","title":"T","date":"2026-03-01","content":"C"}`)

	p, err := client.Create(context.Background(), models.Fields{Title: "T", Date: "2026-03-01", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, "n1", p.ID)
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "application/json", c.ctype)
	assert.Equal(t, map[string]string{"title": "T", "date": "2026-03-01", "content": "C"}, c.body)
}

func TestUpdate(t *testing.T) {
	client, c := server(t, http.StatusOK, `{"_id":"n1","title":"T2","date":"2026-03-01","content":"C"}`)

	p, err := client.Update(context.Background(), "n1", models.Fields{Title: "T2", Date: "2026-03-01", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, "T2", p.Title)
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/api/posts/n1", c.path)
}

func TestDelete(t *testing.T) {
	client, c := server(t, http.StatusOK, `{"ok":true}`)

	require.NoError(t, client.Delete(context.Background(), "n1"))
	assert.Equal(t, http.MethodDelete, c.method)
	assert.Equal(t, "/api/posts/n1", c.path)
}

func TestIDIsPathEscaped(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"a#b", "/api/posts/a%23b"},
		{"x?y=1", "/api/posts/x%3Fy=1"},
		{"abc/../../health/live", "/api/posts/abc%2F..%2F..%2Fhealth%2Flive"},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			client, c := server(t, http.StatusOK, `{"_id":"x"}`)

			require.NoError(t, client.Delete(context.Background(), tc.id))
			assert.Equal(t, tc.want, c.raw)
			assert.Equal(t, "/api/posts/"+tc.id, c.path)
			assert.Empty(t, c.query)

			_, err := client.Update(context.Background(), tc.id, models.Fields{Title: "T", Date: "2026-03-01", Content: "C"})
			require.NoError(t, err)
			assert.Equal(t, http.MethodPut, c.method)
			assert.Equal(t, tc.want, c.raw)
		})
	}
}

func TestNon2xxIsRequestFailed(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		client, _ := server(t, status, `{"error":"nope"}`)
		err := client.Delete(context.Background(), "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRequestFailed)

		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, status, reqErr.Status)
	}
}

func TestTransportFailureIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Zero(t, reqErr.Status)
}

func TestMalformedBodyIsRequestFailed(t *testing.T) {
	client, _ := server(t, http.StatusOK, `not json`)
	_, err := client.List(context.Background())
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "status 200")
	assert.Contains(t, err.Error(), "decode")
}

func TestNoTokenNoHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	posts, err := New(Options{BaseURL: srv.URL}).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Empty(t, auth)
}
