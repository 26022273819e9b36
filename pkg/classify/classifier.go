// Package classify turns a stream of description edits into
// classification requests and decides which responses may be shown.
//
// The Classifier is a plain state machine with no goroutines or timers
// of its own. The caller arms a debounce timer when Edit says so, calls
// Fire when the timer elapses, runs the returned Request, and hands the
// outcome to Resolve. Every step is stamped with the edit sequence
// number; anything stamped with an older number is discarded.
package classify

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"ticket_desk/pkg/model"
)

// DefaultMinLength is the shortest trimmed description that is worth
// classifying.
const DefaultMinLength = 10

// State is the lifecycle of the current description's classification.
type State int

const (
	// Idle means there is nothing to classify.
	Idle State = iota
	// Pending means the debounce timer is armed.
	Pending
	// InFlight means a request for the latest edit has been issued.
	InFlight
	// Resolved means a suggestion for the latest edit is available.
	Resolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case InFlight:
		return "in_flight"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome reports what Resolve did with a response.
type Outcome int

const (
	// Applied means the response became the current suggestion.
	Applied Outcome = iota
	// Degraded means the request failed and the default suggestion was
	// applied in its place.
	Degraded
	// Discarded means the response was stale and ignored.
	Discarded
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Degraded:
		return "degraded"
	default:
		return "discarded"
	}
}

// Request is one classification call to issue.
type Request struct {
	Seq         uint64
	Description string
}

// Classifier owns the edit sequence counter and the suggestion state.
// It is not safe for concurrent use; drive it from a single goroutine.
type Classifier struct {
	minLength int
	logger    *zap.Logger

	seq        uint64
	text       string
	state      State
	suggestion *model.Suggestion
	degraded   bool
	err        error
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMinLength sets the minimum trimmed description length, in
// characters.
func WithMinLength(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.minLength = n
		}
	}
}

// WithLogger sets the logger for discarded and degraded responses.
func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns an idle classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		minLength: DefaultMinLength,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Edit records the full current description text and returns the edit's
// sequence number. schedule is true when the caller should (re)arm the
// debounce timer for seq; false means the text is too short, the
// classifier went Idle, and any existing suggestion was cleared.
func (c *Classifier) Edit(text string) (seq uint64, schedule bool) {
	c.seq++
	c.text = text
	if utf8.RuneCountInString(strings.TrimSpace(text)) < c.minLength {
		c.clear()
		return c.seq, false
	}
	// The suggestion belonged to the previous text.
	c.suggestion = nil
	c.degraded = false
	c.err = nil
	c.state = Pending
	return c.seq, true
}

// Fire is called when the debounce timer armed for seq elapses. It
// returns the request to issue, or false when seq has been superseded.
func (c *Classifier) Fire(seq uint64) (Request, bool) {
	if seq != c.seq || c.state != Pending {
		return Request{}, false
	}
	c.state = InFlight
	return Request{Seq: seq, Description: c.text}, true
}

// Resolve applies the response to the request stamped seq. Responses for
// anything but the latest edit are discarded. A failed request yields the
// default suggestion, flagged as degraded.
func (c *Classifier) Resolve(seq uint64, s model.Suggestion, err error) Outcome {
	if seq != c.seq || c.state != InFlight {
		c.logger.Debug("discarding stale classification",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seq),
			zap.Stringer("state", c.state),
		)
		return Discarded
	}
	c.state = Resolved
	if err != nil {
		c.logger.Warn("classification unavailable, using default", zap.Uint64("seq", seq), zap.Error(err))
		d := model.DefaultSuggestion
		c.suggestion = &d
		c.degraded = true
		c.err = err
		return Degraded
	}
	c.suggestion = &s
	c.degraded = false
	c.err = nil
	return Applied
}

// Reject drops the current suggestion without touching the text.
func (c *Classifier) Reject() {
	c.suggestion = nil
	c.degraded = false
	c.err = nil
	if c.state == Resolved {
		c.state = Idle
	}
}

// Reset forgets the text and suggestion, as after a successful submit.
// The sequence counter keeps increasing so in-flight responses for the
// old text are still discarded.
func (c *Classifier) Reset() {
	c.seq++
	c.text = ""
	c.clear()
}

func (c *Classifier) clear() {
	c.state = Idle
	c.suggestion = nil
	c.degraded = false
	c.err = nil
}

// Suggestion returns the suggestion for the current text, if any.
func (c *Classifier) Suggestion() (model.Suggestion, bool) {
	if c.suggestion == nil {
		return model.Suggestion{}, false
	}
	return *c.suggestion, true
}

// Degraded reports whether the current suggestion is the fallback used
// when classification failed.
func (c *Classifier) Degraded() bool { return c.degraded }

// Err returns the failure behind a degraded suggestion.
func (c *Classifier) Err() error { return c.err }

// State returns the current lifecycle state.
func (c *Classifier) State() State { return c.state }

// Seq returns the latest edit sequence number.
func (c *Classifier) Seq() uint64 { return c.seq }

// Text returns the latest description text.
func (c *Classifier) Text() string { return c.text }
