// Package dashboard turns the stats endpoint's aggregates into chartable
// series and tracks the load state of the analytics view.
package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"ticket_desk/pkg/model"
)

// Phase is the load state of the stats panel. Loading and Failed are
// distinct so a failed fetch never looks like one still in progress.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Point is one bar of a chart.
type Point struct {
	Name  string
	Value int
}

// Series is a chart's points in server order, with derived totals.
type Series struct {
	Points []Point
	Total  int
	Max    int
}

// Share returns the fraction of the total held by point i, or 0 when the
// series is empty.
func (s Series) Share(i int) float64 {
	if s.Total == 0 || i < 0 || i >= len(s.Points) {
		return 0
	}
	return float64(s.Points[i].Value) / float64(s.Total)
}

// Transform converts a breakdown into a series, keeping the order the
// server sent. Nothing is re-sorted and nothing is dropped.
func Transform(b model.Breakdown) Series {
	s := Series{Points: make([]Point, 0, len(b))}
	if len(b) == 0 {
		return s
	}
	vals := make([]float64, len(b))
	for i, c := range b {
		s.Points = append(s.Points, Point{Name: c.Name, Value: c.Value})
		vals[i] = float64(c.Value)
	}
	s.Total = int(floats.Sum(vals))
	s.Max = int(floats.Max(vals))
	return s
}

// Summary is the rendered-ready form of a stats response.
type Summary struct {
	Total      int
	Open       int
	AvgPerDay  string
	Priorities Series
	Categories Series
}

// Summarize derives the display summary. Absent counters are zero.
func Summarize(st model.Stats) Summary {
	return Summary{
		Total:      st.TotalTickets,
		Open:       st.OpenTickets,
		AvgPerDay:  FormatAvg(st.AvgTicketsPerDay),
		Priorities: Transform(st.PriorityBreakdown),
		Categories: Transform(st.CategoryBreakdown),
	}
}

// FormatAvg renders the tickets-per-day figure to two decimal places.
func FormatAvg(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Fetcher loads aggregate stats. *gateway.Client satisfies it.
type Fetcher interface {
	Stats(ctx context.Context) (model.Stats, error)
}

// Request is one stats fetch, stamped with its generation.
type Request struct {
	Gen uint64
}

// Result carries a finished fetch back to Apply.
type Result struct {
	Gen   uint64
	Stats model.Stats
	Err   error
}

// Run issues the fetch against f.
func (r Request) Run(ctx context.Context, f Fetcher) Result {
	st, err := f.Stats(ctx)
	return Result{Gen: r.Gen, Stats: st, Err: err}
}

// Aggregator owns the analytics view's state. It is not safe for
// concurrent use.
type Aggregator struct {
	logger  *zap.Logger
	gen     uint64
	phase   Phase
	summary Summary
	err     error
}

// New returns an idle aggregator. A nil logger is replaced by a no-op.
func New(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// Load starts a new fetch. Any fetch already in flight is superseded.
func (a *Aggregator) Load() Request {
	a.gen++
	a.phase = Loading
	return Request{Gen: a.gen}
}

// Apply installs a finished fetch. Responses for superseded fetches are
// ignored and false is returned.
func (a *Aggregator) Apply(res Result) bool {
	if res.Gen != a.gen {
		a.logger.Debug("discarding stale stats", zap.Uint64("gen", res.Gen), zap.Uint64("latest", a.gen))
		return false
	}
	if res.Err != nil {
		a.phase = Failed
		a.err = res.Err
		a.logger.Warn("stats fetch failed", zap.Error(res.Err))
		return true
	}
	a.phase = Loaded
	a.err = nil
	a.summary = Summarize(res.Stats)
	return true
}

// Phase returns the current load state.
func (a *Aggregator) Phase() Phase { return a.phase }

// Summary returns the last successfully loaded summary.
func (a *Aggregator) Summary() Summary { return a.summary }

// Err returns the failure behind the Failed phase.
func (a *Aggregator) Err() error { return a.err }
