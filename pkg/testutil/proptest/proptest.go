// Package proptest provides property-based testing helpers and input
// generators for the ticket domain.
//
// It builds on pgregory.net/rapid, so failing inputs are shrunk to a
// minimal case.
//
// Example usage:
//
//	func TestList_MatchesReference(t *testing.T) {
//		proptest.CompareImplementations(t,
//			"List",
//			proptest.TicketsAndQuery(20),
//			referenceList,
//			storeList,
//			proptest.SliceEqual(sameTicket),
//		)
//	}
package proptest

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

// CompareImplementations checks that two implementations agree on every
// generated input. ref is the simple, obviously-correct version.
func CompareImplementations[I, O any](
	t *testing.T,
	name string,
	genInput func(*rapid.T) I,
	ref func(I) O,
	impl func(I) O,
	equal func(O, O) bool,
) {
	t.Helper()
	rapid.Check(t, func(rt *rapid.T) {
		input := genInput(rt)
		want := ref(input)
		got := impl(input)
		if !equal(want, got) {
			rt.Fatalf("%s: implementations differ\ninput: %+v\nref:  %+v\nimpl: %+v", name, input, want, got)
		}
	})
}

// ============================================================================
// Comparison Functions
// ============================================================================

// DeepEqual uses reflect.DeepEqual for comparison.
func DeepEqual[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

// SliceEqual compares slices element-by-element using the provided comparison.
func SliceEqual[T any](equal func(T, T) bool) func([]T, []T) bool {
	return func(a, b []T) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !equal(a[i], b[i]) {
				return false
			}
		}
		return true
	}
}

// ============================================================================
// Input Generators
// ============================================================================

// OneOf returns a generator that picks from the provided options.
func OneOf[T any](options ...T) func(*rapid.T) T {
	return func(t *rapid.T) T {
		return rapid.SampledFrom(options).Draw(t, "one_of")
	}
}

// Optional returns gen's value or the zero value.
func Optional[T any](gen func(*rapid.T) T) func(*rapid.T) T {
	return func(t *rapid.T) T {
		var zero T
		if rapid.Bool().Draw(t, "present") {
			return gen(t)
		}
		return zero
	}
}

// Words draws a short phrase from a small vocabulary so that generated
// searches actually hit generated text.
func Words(min, max int) func(*rapid.T) string {
	vocab := []string{"login", "invoice", "crash", "Refund", "password", "export", "slow", "account", "card", "error"}
	return func(t *rapid.T) string {
		ws := rapid.SliceOfN(rapid.SampledFrom(vocab), min, max).Draw(t, "words")
		out := ""
		for i, w := range ws {
			if i > 0 {
				out += " "
			}
			out += w
		}
		return out
	}
}

// Ticket generates a valid ticket with the given id. Creation times fall
// on a small set of instants so ties are common.
func Ticket(id model.TicketID) func(*rapid.T) model.Ticket {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func(t *rapid.T) model.Ticket {
		return model.Ticket{
			ID:          id,
			Title:       Words(1, 4)(t),
			Description: Words(1, 12)(t),
			Category:    OneOf(model.Categories...)(t),
			Priority:    OneOf(model.Priorities...)(t),
			Status:      OneOf(model.Statuses...)(t),
			CreatedAt:   base.Add(time.Duration(rapid.IntRange(0, 5).Draw(t, "hours")) * time.Hour),
		}
	}
}

// Tickets generates up to max tickets with distinct numeric ids.
func Tickets(max int) func(*rapid.T) []model.Ticket {
	return func(t *rapid.T) []model.Ticket {
		n := rapid.IntRange(0, max).Draw(t, "tickets_len")
		out := make([]model.Ticket, n)
		for i := range out {
			out[i] = Ticket(model.TicketID(fmt.Sprint(i + 1)))(t)
		}
		return out
	}
}

// Query generates a filter with each facet optionally set.
func Query() func(*rapid.T) query.Query {
	return func(t *rapid.T) query.Query {
		return query.Query{
			Search:   Optional(Words(1, 2))(t),
			Category: Optional(OneOf(model.Categories...))(t),
			Priority: Optional(OneOf(model.Priorities...))(t),
			Status:   Optional(OneOf(model.Statuses...))(t),
		}
	}
}

// TicketsAndQueryInput pairs a ticket set with a filter.
type TicketsAndQueryInput struct {
	Tickets []model.Ticket
	Query   query.Query
}

// TicketsAndQuery generates a ticket set and a filter over it.
func TicketsAndQuery(max int) func(*rapid.T) TicketsAndQueryInput {
	return func(t *rapid.T) TicketsAndQueryInput {
		return TicketsAndQueryInput{Tickets: Tickets(max)(t), Query: Query()(t)}
	}
}
