package postservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/testutil"
	"github.com/starford/inkwell/pkg/clock"
)

func setup(t *testing.T) (*Service, *testutil.Recorder) {
	t.Helper()
	rec := &testutil.Recorder{}
	clk := clock.NewTestClockAt(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))
	return New(testutil.TestStore(t), WithPublisher(rec), WithClock(clk)), rec
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc, events := setup(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, models.Fields{Title: "T", Date: "2026-03-01", Content: "C"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Title != "T" || r.Date != "2026-03-01" || r.Content != "C" {
		t.Errorf("record = %+v", r.Post)
	}

	got := events.Events()
	if len(got) != 1 || got[0].Kind != sse.Created || got[0].ID != r.ID {
		t.Errorf("events = %+v", got)
	}
}

func TestCreateDefaultsDateToToday(t *testing.T) {
	svc, _ := setup(t)
	r, err := svc.Create(context.Background(), models.Fields{Title: "T", Content: "C"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Date != "2026-03-14" {
		t.Errorf("date = %q, want 2026-03-14", r.Date)
	}
}

func TestCreateInvalid(t *testing.T) {
	svc, events := setup(t)
	tests := []struct {
		name string
		in   models.Fields
	}{
		{"missing title", models.Fields{Date: "2026-01-01", Content: "C"}},
		{"missing content", models.Fields{Title: "T", Date: "2026-01-01"}},
		{"missing content with default date", models.Fields{Title: "T"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			if !errors.Is(err, apperr.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
	if n := len(events.Events()); n != 0 {
		t.Errorf("published %d events for invalid input", n)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, events := setup(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, models.Fields{Title: "T", Date: "2026-01-01", Content: "C"})

	u, err := svc.Update(ctx, r.ID, models.Patch{Content: strPtr("C2")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.Title != "T" || u.Content != "C2" {
		t.Errorf("updated = %+v", u.Post)
	}
	got := events.Events()
	if got[len(got)-1] != (testutil.PostEvent{Kind: sse.Updated, ID: r.ID}) {
		t.Errorf("last event = %+v", got[len(got)-1])
	}
}

func TestUpdateRejectsEmptyProvidedField(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, models.Fields{Title: "T", Date: "2026-01-01", Content: "C"})

	if _, err := svc.Update(ctx, r.ID, models.Patch{Title: strPtr("")}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty title: err = %v, want ErrInvalid", err)
	}
	if _, err := svc.Update(ctx, r.ID, models.Patch{Date: strPtr("")}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty date: err = %v, want ErrInvalid", err)
	}
}

func TestDatesAreFreeForm(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, models.Fields{Title: "T", Date: "2026-1-5", Content: "C"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Date != "2026-1-5" {
		t.Errorf("date = %q, want stored as given", r.Date)
	}
	u, err := svc.Update(ctx, r.ID, models.Patch{Date: strPtr("March 3rd")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.Date != "March 3rd" {
		t.Errorf("date = %q", u.Date)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Update(context.Background(), "missing", models.Patch{Title: strPtr("x")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, events := setup(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, models.Fields{Title: "T", Date: "2026-01-01", Content: "C"})

	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, r.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	got := events.Events()
	if len(got) != 2 || got[1].Kind != sse.Deleted {
		t.Errorf("events = %+v", got)
	}
	if n, _ := svc.Count(ctx); n != 0 {
		t.Errorf("count = %d", n)
	}
}
