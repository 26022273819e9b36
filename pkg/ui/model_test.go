package ui_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ticket_desk/pkg/classify"
	"ticket_desk/pkg/dashboard"
	"ticket_desk/pkg/model"
	"ticket_desk/pkg/ui"
)

const window = 500 * time.Millisecond

func TestModel_InitialLoad(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	if got := len(h.m.Tickets()); got != 2 {
		t.Fatalf("tickets = %d, want 2", got)
	}
	if h.m.FocusState() != "list" {
		t.Errorf("focus = %q, want list", h.m.FocusState())
	}
	if sel := h.m.SelectedTicket(); sel == nil || sel.ID != "1" {
		t.Errorf("selected = %v, want #1", sel)
	}
}

func TestModel_EmptyTitleIssuesNoRequest(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("n")
	if h.m.FocusState() != "form" {
		t.Fatalf("focus = %q, want form", h.m.FocusState())
	}
	h.press("tab")
	h.typeText("Something broke")
	h.press("ctrl+s")

	var verr *model.ValidationError
	if !errors.As(h.m.FormErr(), &verr) || !verr.Has("title") {
		t.Fatalf("form error = %v, want title required", h.m.FormErr())
	}
	if h.m.Submitting() {
		t.Error("a rejected draft must not be submitting")
	}

	h.settle(50 * time.Millisecond)
	if _, creates, _, _ := b.counts(); creates != 0 {
		t.Errorf("create calls = %d, want 0", creates)
	}
	if got := h.m.FormDraft().Description; got != "Something broke" {
		t.Errorf("description = %q, should be kept after a failed submit", got)
	}
}

func TestModel_FacetKeyRefetches(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("c")
	if got := h.m.ActiveQuery().Category; got != model.CategoryBilling {
		t.Fatalf("category = %q, want billing", got)
	}
	h.until("billing refetch", func(m ui.Model) bool {
		return !m.Loading() && len(m.Tickets()) == 1
	})
	if got := b.lastList().Category; got != model.CategoryBilling {
		t.Errorf("last list category = %q", got)
	}
}

func TestModel_SearchAppliesOnEnter(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()
	before, _, _, _ := b.counts()

	h.press("/")
	if h.m.FocusState() != "search" {
		t.Fatalf("focus = %q, want search", h.m.FocusState())
	}
	h.typeText("crash")
	h.settle(50 * time.Millisecond)

	if after, _, _, _ := b.counts(); after != before {
		t.Errorf("typing issued %d list calls", after-before)
	}
	if h.m.ActiveQuery().Search != "" || h.m.SearchDraft() != "crash" {
		t.Errorf("active = %q draft = %q", h.m.ActiveQuery().Search, h.m.SearchDraft())
	}

	h.press("enter")
	if h.m.ActiveQuery().Search != "crash" {
		t.Fatalf("search not applied: %q", h.m.ActiveQuery().Search)
	}
	h.until("search results", func(m ui.Model) bool {
		return !m.Loading() && len(m.Tickets()) == 1
	})
	if got := h.m.Tickets()[0].ID; got != "2" {
		t.Errorf("result = #%s, want #2", got)
	}
}

func TestModel_RefreshFailureKeepsTickets(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	b.set(func(b *fakeBackend) { b.listErr = errors.New("connection refused") })
	h.press("r")
	h.until("failed refresh", func(m ui.Model) bool { return m.LoadErr() != nil })

	if got := len(h.m.Tickets()); got != 2 {
		t.Errorf("tickets = %d, previous results should stay", got)
	}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(h.m.View(), "Refresh failed") {
		t.Error("view should show the refresh failure")
	}
}

func openFormWithDescription(h *harness, title, desc string) {
	h.press("n")
	h.typeText(title)
	h.press("tab")
	h.typeText(desc)
}

func TestModel_ClassificationFillsForm(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	openFormWithDescription(h, "Cannot log in", "Been stuck for 2 days")
	if h.m.ClassifierState() != classify.Pending {
		t.Fatalf("state = %v, want pending", h.m.ClassifierState())
	}
	h.clock.Advance(window)
	h.until("suggestion", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })

	d := h.m.FormDraft()
	if d.Category != model.CategoryAccount || d.Priority != model.PriorityHigh {
		t.Errorf("draft = %s/%s, want account/high", d.Category, d.Priority)
	}
	if _, _, _, n := b.counts(); n != 1 {
		t.Errorf("classify calls = %d, want 1", n)
	}
}

func TestModel_EditDropsSuggestedValues(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	openFormWithDescription(h, "Cannot log in", "Been stuck for 2 days")
	h.clock.Advance(window)
	h.until("suggestion", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })

	h.typeText(" and now billing is broken too")
	if _, ok := h.m.Suggestion(); ok {
		t.Error("suggestion belongs to the previous text")
	}
	if d := h.m.FormDraft(); d.Category != "" || d.Priority != "" {
		t.Errorf("draft = %s/%s, suggested values must not outlive their text", d.Category, d.Priority)
	}

	// Submitting before the new suggestion arrives sends no category/priority.
	h.press("ctrl+s")
	h.until("created", func(m ui.Model) bool { return m.MutationGeneration() == 1 })
	b.mu.Lock()
	sent := b.createCalls[0]
	b.mu.Unlock()
	if sent.Category != "" || sent.Priority != "" {
		t.Errorf("create sent %s/%s, want empty advisory fields", sent.Category, sent.Priority)
	}
}

func TestModel_FormLockedWhileSubmitting(t *testing.T) {
	b := newFakeBackend()
	gate := make(chan struct{})
	b.createGate = gate
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	openFormWithDescription(h, "Printer offline", "The office printer is offline")
	h.press("ctrl+s")
	if !h.m.Submitting() {
		t.Fatal("submit should be in flight")
	}
	h.until("create call", func(m ui.Model) bool {
		_, n, _, _ := b.counts()
		return n == 1
	})

	h.typeText(" again")
	h.press("shift+tab")
	h.typeText("!")
	h.press("ctrl+s")
	d := h.m.FormDraft()
	if d.Title != "Printer offline" || d.Description != "The office printer is offline" {
		t.Errorf("form edited while submitting: %+v", d)
	}
	if h.m.FocusState() != "form" {
		t.Errorf("focus = %q, want form", h.m.FocusState())
	}

	close(gate)
	h.until("created", func(m ui.Model) bool { return m.MutationGeneration() == 1 })
	if _, n, _, _ := b.counts(); n != 1 {
		t.Errorf("create calls = %d, want 1", n)
	}
}

func TestModel_DebounceCoalescesTyping(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("n", "tab")
	for _, chunk := range []string{"My invoice ", "shows the wrong ", "amount again"} {
		h.typeText(chunk)
		h.clock.Advance(window / 2)
	}
	h.settle(20 * time.Millisecond)
	if _, _, _, n := b.counts(); n != 0 {
		t.Fatalf("classify calls while typing = %d, want 0", n)
	}

	h.clock.Advance(window)
	h.until("suggestion", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })

	b.mu.Lock()
	calls := append([]string(nil), b.classifyCalls...)
	b.mu.Unlock()
	if len(calls) != 1 || calls[0] != "My invoice shows the wrong amount again" {
		t.Errorf("classify calls = %q", calls)
	}
}

func TestModel_ManualChoiceSurvivesSuggestion(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("n", "tab", "tab", "right") // category: billing
	h.press("shift+tab")
	h.typeText("I cannot reach my account")
	h.clock.Advance(window)
	h.until("suggestion", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })

	d := h.m.FormDraft()
	if d.Category != model.CategoryBilling {
		t.Errorf("category = %q, the user's choice must win", d.Category)
	}
	if d.Priority != model.PriorityHigh {
		t.Errorf("priority = %q, want suggested high", d.Priority)
	}
}

func TestModel_RejectAndAcceptSuggestion(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	openFormWithDescription(h, "Login", "I cannot reach my account")
	h.clock.Advance(window)
	h.until("suggestion", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })

	h.press("ctrl+r")
	if _, ok := h.m.Suggestion(); ok {
		t.Error("suggestion should be dismissed")
	}
	if d := h.m.FormDraft(); d.Category != "" || d.Priority != "" {
		t.Errorf("auto-filled fields should revert, got %s/%s", d.Category, d.Priority)
	}

	h.typeText(" since Monday")
	h.clock.Advance(window)
	h.until("second suggestion", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })
	h.press("ctrl+a")
	h.press("ctrl+r")
	if d := h.m.FormDraft(); d.Category != model.CategoryAccount || d.Priority != model.PriorityHigh {
		t.Errorf("accepted values should stay after dismissing, got %s/%s", d.Category, d.Priority)
	}
}

func TestModel_ClassifyFailureFallsBack(t *testing.T) {
	b := newFakeBackend()
	b.classifyErr = errors.New("503")
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	openFormWithDescription(h, "Help", "Nothing works at all today")
	h.clock.Advance(window)
	h.until("fallback", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })

	s, ok := h.m.Suggestion()
	if !ok || s != model.DefaultSuggestion {
		t.Errorf("suggestion = %+v, %v; want default", s, ok)
	}
	if d := h.m.FormDraft(); d.Category != model.CategoryGeneral || d.Priority != model.PriorityLow {
		t.Errorf("draft = %s/%s", d.Category, d.Priority)
	}
	if !strings.Contains(h.m.View(), "Classification unavailable") {
		t.Error("form should say classification is unavailable")
	}
}

func TestModel_ShortDescriptionNeverClassifies(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	openFormWithDescription(h, "Hi", "   short  ")
	h.clock.Advance(2 * window)
	h.settle(30 * time.Millisecond)
	if _, _, _, n := b.counts(); n != 0 {
		t.Errorf("classify calls = %d, want 0", n)
	}
	if h.m.ClassifierState() != classify.Idle {
		t.Errorf("state = %v, want idle", h.m.ClassifierState())
	}
}

func TestModel_CreateRefetchesList(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	openFormWithDescription(h, "Cannot log in", "Been stuck for 2 days")
	h.clock.Advance(window)
	h.until("suggestion", func(m ui.Model) bool { return m.ClassifierState() == classify.Resolved })
	h.press("ctrl+s")
	if !h.m.Submitting() {
		t.Fatal("submit should be in flight")
	}

	h.until("refetch after create", func(m ui.Model) bool {
		return m.MutationGeneration() == 1 && !m.Loading() && len(m.Tickets()) == 3
	})
	got := h.m.Tickets()[0]
	if got.Title != "Cannot log in" || got.Category != model.CategoryAccount || got.Priority != model.PriorityHigh {
		t.Errorf("created ticket = %+v", got)
	}
	if h.m.FocusState() != "list" {
		t.Errorf("focus = %q, want list", h.m.FocusState())
	}
	if d := h.m.FormDraft(); d.Title != "" || d.Description != "" || d.Category != "" {
		t.Errorf("form should be reset, got %+v", d)
	}
	if _, ok := h.m.Suggestion(); ok {
		t.Error("suggestion should be cleared after submit")
	}
}

func TestModel_StatusChangeIsPerTicket(t *testing.T) {
	b := newFakeBackend()
	gate := make(chan struct{})
	b.patchGate = gate
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("]")
	if !h.m.PatchPending("1") {
		t.Fatal("#1 should be pending")
	}
	if h.m.PatchPending("2") {
		t.Error("#2 must not be affected")
	}

	// A second change to the same ticket is refused while the first runs.
	h.press("]")
	h.settle(20 * time.Millisecond)
	if _, _, patches, _ := b.counts(); patches != 1 {
		t.Errorf("patch calls = %d, want 1", patches)
	}

	// Another ticket can change meanwhile.
	h.press("j", "]")
	if !h.m.PatchPending("2") {
		t.Error("#2 should be pending")
	}

	b.set(func(b *fakeBackend) { b.patchErr = errors.New("500") })
	close(gate)
	h.until("both patches", func(m ui.Model) bool {
		return !m.PatchPending("1") && !m.PatchPending("2")
	})
	if h.m.PatchErr("1") == nil || h.m.PatchErr("2") == nil {
		t.Error("failures should be recorded per ticket")
	}
	for _, tk := range h.m.Tickets() {
		if tk.Status != model.StatusOpen {
			t.Errorf("#%s status = %s, failed changes must not show", tk.ID, tk.Status)
		}
	}
	if h.m.MutationGeneration() != 0 {
		t.Errorf("generation = %d, failures are not mutations", h.m.MutationGeneration())
	}
}

func TestModel_StatusChangeRefetches(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("]")
	h.until("refetch after patch", func(m ui.Model) bool {
		return m.MutationGeneration() == 1 && !m.Loading() && m.Tickets()[0].Status == model.StatusInProgress
	})
	if h.m.PatchErr("1") != nil {
		t.Errorf("unexpected patch error %v", h.m.PatchErr("1"))
	}
}

func TestModel_AnalyticsLoadsOnEnter(t *testing.T) {
	b := newFakeBackend()
	b.stats = model.Stats{TotalTickets: 4, OpenTickets: 3, AvgTicketsPerDay: 2}
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("tab")
	if h.m.ActiveView() != ui.ViewAnalytics {
		t.Fatalf("view = %v", h.m.ActiveView())
	}
	h.until("stats", func(m ui.Model) bool { return m.StatsPhase() == dashboard.Loaded })
	if got := h.m.StatsSummary(); got.Total != 4 || got.AvgPerDay != "2.00" {
		t.Errorf("summary = %+v", got)
	}

	h.press("tab", "tab")
	h.until("second stats load", func(m ui.Model) bool { return m.StatsPhase() == dashboard.Loaded })
	b.mu.Lock()
	calls := b.statsCalls
	b.mu.Unlock()
	if calls != 2 {
		t.Errorf("stats calls = %d, each visit should refetch", calls)
	}
}

func TestModel_CopyTicketID(t *testing.T) {
	b := newFakeBackend()
	var copied string
	h := newHarness(t, ui.Options{Backend: b, Clipboard: func(s string) error {
		copied = s
		return nil
	}})
	h.loaded()

	h.press("y")
	h.until("copy", func(m ui.Model) bool { return strings.Contains(m.StatusMessage(), "Copied") })
	if copied != "1" {
		t.Errorf("copied %q, want 1", copied)
	}
}

func TestModel_BoardToggle(t *testing.T) {
	b := newFakeBackend()
	h := newHarness(t, ui.Options{Backend: b})
	h.loaded()

	h.press("b")
	if !h.m.IsBoardView() || h.m.FocusState() != "board" {
		t.Fatalf("board = %v focus = %q", h.m.IsBoardView(), h.m.FocusState())
	}
	h.send(tea.WindowSizeMsg{Width: 140, Height: 40})
	if view := h.m.View(); !strings.Contains(view, "IN PROGRESS") {
		t.Error("board should render status columns")
	}
}

func TestModel_EmptyResultMessage(t *testing.T) {
	b := newFakeBackend()
	b.tickets = nil
	h := newHarness(t, ui.Options{Backend: b})
	h.until("empty load", func(m ui.Model) bool { return !m.Loading() })

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(h.m.View(), "No tickets match") {
		t.Error("empty result should be distinct from loading")
	}
}
