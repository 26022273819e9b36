package classify

import (
	"context"

	"ticket_desk/pkg/model"
)

// Service performs a classification call. *gateway.Client satisfies it.
type Service interface {
	Classify(ctx context.Context, description string) (model.Suggestion, error)
}

// Result carries a finished request back to Resolve.
type Result struct {
	Seq        uint64
	Suggestion model.Suggestion
	Err        error
}

// Run issues the request against svc.
func (r Request) Run(ctx context.Context, svc Service) Result {
	s, err := svc.Classify(ctx, r.Description)
	return Result{Seq: r.Seq, Suggestion: s, Err: err}
}

// Apply hands a finished request to the classifier.
func (c *Classifier) Apply(res Result) Outcome {
	return c.Resolve(res.Seq, res.Suggestion, res.Err)
}
