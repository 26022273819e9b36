package ui

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"ticket_desk/pkg/cache"
)

// detailRenderer renders a ticket's description as markdown. Renderers
// are rebuilt only when the wrap width changes; rendered bodies are kept
// per ticket, width and description.
type detailRenderer struct {
	theme  string
	logger *zap.Logger
	bodies *cache.Cache[string]

	width int
	tr    *glamour.TermRenderer
}

func newDetailRenderer(theme string, logger *zap.Logger) *detailRenderer {
	return &detailRenderer{
		theme:  theme,
		logger: logger,
		bodies: cache.New[string](cache.WithSize(64)),
	}
}

func bodyKey(id string, width int, desc string) string {
	h := fnv.New64a()
	h.Write([]byte(desc))
	return fmt.Sprintf("%s:%d:%x", id, width, h.Sum64())
}

func (d *detailRenderer) renderer(width int) *glamour.TermRenderer {
	if d.tr != nil && d.width == width {
		return d.tr
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch d.theme {
	case "dark", "light":
		opts = append(opts, glamour.WithStandardStyle(d.theme))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		d.logger.Warn("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	d.tr, d.width = tr, width
	return tr
}

// Render builds the detail pane for t at the given width.
func (d *detailRenderer) Render(it TicketItem, width int, now time.Time) string {
	t := it.Ticket
	if width < 20 {
		width = 20
	}

	var sb strings.Builder
	sb.WriteString(DetailTitleStyle.Render(truncateRunesHelper(t.Title, width-4, "…")))
	sb.WriteString("\n")

	icon, _ := GetCategoryIcon(t.Category)
	meta := fmt.Sprintf("#%s  %s %s  %s %s  %s %s  • %s",
		t.ID,
		icon, t.Category,
		GetPriorityIcon(t.Priority), t.Priority,
		GetStatusIcon(t.Status), t.Status,
		FormatTimeRel(t.CreatedAt, now),
	)
	sb.WriteString(DetailMetaStyle.Render(meta))
	sb.WriteString("\n")

	switch {
	case it.Pending:
		sb.WriteString(HelpStyle.Render("Updating status to " + string(it.PendingStatus) + "…"))
		sb.WriteString("\n")
	case it.PatchErr != "":
		sb.WriteString(ErrorStyle.Render("Status update failed: " + it.PatchErr))
		sb.WriteString("\n")
	}

	sb.WriteString(d.body(string(t.ID), t.Description, width-2))

	return PanelStyle.Width(width).Render(sb.String())
}

// body returns the rendered description, falling back to plain text when
// markdown rendering is unavailable.
func (d *detailRenderer) body(id, desc string, width int) string {
	key := bodyKey(id, width, desc)
	if out, ok := d.bodies.Get(key); ok {
		return out
	}
	tr := d.renderer(width)
	if tr == nil {
		return desc
	}
	out, err := tr.Render(desc)
	if err != nil {
		d.logger.Debug("markdown render failed", zap.String("id", id), zap.Error(err))
		return desc
	}
	d.bodies.Set(key, out)
	return out
}
