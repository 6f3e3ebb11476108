// Package seed fills an empty post store with sample content.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/inkwell/internal/models"
)

// Target is where seeded posts go.
type Target interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, f models.Fields) (*models.Record, error)
}

type file struct {
	Posts []models.Fields `yaml:"posts"`
}

// Defaults returns the built-in sample posts. Posts without a date are stamped
// with the day they are seeded.
func Defaults() []models.Fields {
	return []models.Fields{
		{
			Title:   "Getting started with my blog",
			Date:    "2026-02-08",
			Content: "Welcome to my new blog. I will share projects, notes, and tutorials here. Stay tuned for more updates!",
		},
		{
			Title:   "Building a simple SPA",
			Date:    "2026-02-07",
			Content: "A lightweight SPA can be built with plain HTML, CSS, and JavaScript. Ship static when you can for speed.",
		},
		{
			Title:   "Welcome to My Blog!",
			Content: "This is the first post on my new blog. I'm excited to share my thoughts and ideas with you. Stay tuned for more content!",
		},
		{
			Title:   "Getting Started with Flask",
			Content: "Flask is a lightweight web framework for Python. It's perfect for building small to medium web applications. In this post, I'll share some tips for getting started with Flask development.",
		},
		{
			Title:   "Deploying to AWS EC2",
			Content: "AWS EC2 provides scalable computing capacity in the cloud. In this guide, I'll walk through the steps to deploy a Flask application on an EC2 instance, including setting up Nginx and securing your application.",
		},
	}
}

// LoadFile reads posts from a YAML file of the form `posts: [{title, date, content}]`.
func LoadFile(path string) ([]models.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return f.Posts, nil
}

// Run inserts posts into t when it holds no posts yet and reports how many were added.
func Run(ctx context.Context, t Target, posts []models.Fields, logger *slog.Logger) (int, error) {
	n, err := t.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: count: %w", err)
	}
	if n > 0 {
		logger.Info("store already has posts, skipping seed", slog.Int64("count", n))
		return 0, nil
	}
	added := 0
	for _, p := range posts {
		rec, err := t.Create(ctx, p)
		if err != nil {
			return added, fmt.Errorf("seed: create %q: %w", p.Title, err)
		}
		logger.Debug("seeded post", slog.String("id", rec.ID), slog.String("title", rec.Title))
		added++
	}
	logger.Info("seed complete", slog.Int("added", added))
	return added, nil
}
