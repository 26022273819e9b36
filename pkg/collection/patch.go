package collection

import (
	"context"

	"go.uber.org/zap"

	"ticket_desk/pkg/model"
)

// PatchRequest is one status change to issue.
type PatchRequest struct {
	ID     model.TicketID
	Status model.Status
}

// Patcher performs a status change. *gateway.Client satisfies it.
type Patcher interface {
	UpdateStatus(ctx context.Context, id model.TicketID, status model.Status) (model.Ticket, error)
}

// PatchResult carries a finished status change back to FinishPatch.
type PatchResult struct {
	ID     model.TicketID
	Status model.Status
	Err    error
}

// Run issues the patch against p.
func (r PatchRequest) Run(ctx context.Context, p Patcher) PatchResult {
	_, err := p.UpdateStatus(ctx, r.ID, r.Status)
	return PatchResult{ID: r.ID, Status: r.Status, Err: err}
}

// BeginPatch marks id as having a status change in flight. It returns
// false while a previous change to the same ticket is still running, or
// when the ticket already has the requested status. The displayed
// ticket is left untouched; the change becomes visible after the
// refetch that follows a successful patch.
func (s *Synchronizer) BeginPatch(id model.TicketID, status model.Status) (PatchRequest, bool) {
	if _, busy := s.patching[id]; busy {
		return PatchRequest{}, false
	}
	if t, ok := s.Get(id); ok && t.Status == status {
		return PatchRequest{}, false
	}
	s.patching[id] = status
	delete(s.patchErr, id)
	return PatchRequest{ID: id, Status: status}, true
}

// FinishPatch records the outcome of a status change and reports
// whether it succeeded. A failure is kept against that ticket alone and
// the control becomes available again for a retry. On success the
// caller signals a mutation so the collection is refetched.
func (s *Synchronizer) FinishPatch(res PatchResult) bool {
	delete(s.patching, res.ID)
	if res.Err != nil {
		s.patchErr[res.ID] = res.Err
		s.logger.Warn("status update failed",
			zap.String("id", string(res.ID)),
			zap.String("status", string(res.Status)),
			zap.Error(res.Err),
		)
		return false
	}
	delete(s.patchErr, res.ID)
	return true
}

// Patching returns the status being applied to id, if a change is in flight.
func (s *Synchronizer) Patching(id model.TicketID) (model.Status, bool) {
	st, ok := s.patching[id]
	return st, ok
}

// PatchErr returns the last failed status change for id.
func (s *Synchronizer) PatchErr(id model.TicketID) error {
	return s.patchErr[id]
}

// DismissPatchErr clears the failure notice for id.
func (s *Synchronizer) DismissPatchErr(id model.TicketID) {
	delete(s.patchErr, id)
}
