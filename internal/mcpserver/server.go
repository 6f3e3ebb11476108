// Package mcpserver exposes the post service as MCP (Model Context Protocol)
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/postservice"
)

// Server wraps the MCP server with post tools.
type Server struct {
	mcp *server.MCPServer
	svc *postservice.Service
}

// New creates an MCP server with all post tools registered.
func New(svc *postservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"inkwell",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List all blog posts, newest date first."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read a single blog post by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post identifier")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Create a blog post. Read the inkwell://post-format resource for field rules."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Post body")),
		mcp.WithString("date", mcp.Description("YYYY-MM-DD, defaults to today")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("update_post",
		mcp.WithDescription("Change some fields of an existing post. Omitted fields are kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post identifier")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("date", mcp.Description("New date, YYYY-MM-DD")),
		mcp.WithString("content", mcp.Description("New body")),
	), s.updatePost)

	s.mcp.AddTool(mcp.NewTool("delete_post",
		mcp.WithDescription("Delete a post by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post identifier")),
	), s.deletePost)

	s.mcp.AddResource(
		mcp.NewResource("inkwell://post-format", "Post Format",
			mcp.WithResourceDescription("Fields and validation rules for blog posts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(id string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalidID):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) listPosts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	posts := make([]models.Post, len(recs))
	for i, r := range recs {
		posts[i] = r.Post
	}
	return jsonResult(posts), nil
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return errorResult(id, err), nil
	}
	return jsonResult(rec.Post), nil
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Create(ctx, models.Fields{
		Title:   title,
		Date:    req.GetString("date", ""),
		Content: content,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", rec.ID)), nil
}

func (s *Server) updatePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	optional := func(key string) *string {
		v, ok := args[key].(string)
		if !ok {
			return nil
		}
		return &v
	}
	patch := models.Patch{
		Title:   optional("title"),
		Date:    optional("date"),
		Content: optional("content"),
	}
	if _, err := s.svc.Update(ctx, id, patch); err != nil {
		return errorResult(id, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) deletePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		return errorResult(id, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) readPostFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "inkwell://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}
