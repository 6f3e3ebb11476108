package api

import (
	"time"

	"github.com/starford/inkwell/internal/models"
)

// PostResponse is the wire form of a stored post. The identifier is emitted as
// "_id", matching document-store conventions that clients normalise.
type PostResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(r *models.Record) PostResponse {
	return PostResponse{
		ID:        r.ID,
		Title:     r.Title,
		Date:      r.Date,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toResponses(recs []models.Record) []PostResponse {
	out := make([]PostResponse, len(recs))
	for i := range recs {
		out[i] = toResponse(&recs[i])
	}
	return out
}

// okResponse is returned by DELETE.
type okResponse struct {
	OK bool `json:"ok"`
}
