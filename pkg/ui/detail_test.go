package ui

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"ticket_desk/pkg/model"
)

func TestDetailRenderer_CachesBodies(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := newDetailRenderer("dark", zap.NewNop())
	it := TicketItem{Ticket: model.Ticket{
		ID:          "7",
		Title:       "Export fails",
		Description: "Steps:\n\n1. open a report\n2. press export",
		Category:    model.CategoryTechnical,
		Priority:    model.PriorityMedium,
		Status:      model.StatusOpen,
		CreatedAt:   now.Add(-2 * time.Hour),
	}}

	out := d.Render(it, 80, now)
	if !strings.Contains(out, "Export fails") || !strings.Contains(out, "#7") {
		t.Errorf("detail missing header:\n%s", out)
	}
	d.Render(it, 80, now)
	if st := d.bodies.Stats(); st.Hits != 1 || st.Size != 1 {
		t.Errorf("stats after re-render = %+v", st)
	}

	d.Render(it, 60, now)
	if d.bodies.Len() != 2 {
		t.Errorf("a new width should render again, len = %d", d.bodies.Len())
	}

	it.Pending = true
	it.PendingStatus = model.StatusInProgress
	if out := d.Render(it, 80, now); !strings.Contains(out, "Updating status to in_progress") {
		t.Errorf("pending change not shown:\n%s", out)
	}
}

func TestBodyKeyTracksDescription(t *testing.T) {
	if bodyKey("1", 80, "a") == bodyKey("1", 80, "b") {
		t.Error("edited descriptions must not share a cache entry")
	}
	if bodyKey("1", 80, "a") != bodyKey("1", 80, "a") {
		t.Error("key should be stable")
	}
}
