package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"ticket_desk/pkg/classify"
	"ticket_desk/pkg/collection"
	"ticket_desk/pkg/dashboard"
	"ticket_desk/pkg/debounce"
	"ticket_desk/pkg/model"
	"ticket_desk/pkg/preset"
	"ticket_desk/pkg/query"
)

type focus int

const (
	focusList focus = iota
	focusSearch
	focusForm
	focusDetail
)

// Options configures NewModel. Backend is required.
type Options struct {
	Backend Backend
	Logger  *zap.Logger
	Context context.Context

	// Query is the filter the list starts with.
	Query          query.Query
	Debounce       time.Duration
	Clock          debounce.Clock
	MinDescription int
	Presets        *preset.Registry
	Theme          string
	BoardView      bool
	Clipboard      func(string) error
	Now            func() time.Time
}

// Model is the root bubbletea model. Components with state that must
// survive Update's value copies are held by pointer.
type Model struct {
	backend Backend
	logger  *zap.Logger
	ctx     context.Context
	now     func() time.Time
	copyFn  func(string) error

	coord      *Coordinator
	handledGen uint64
	sync       *collection.Synchronizer
	composer   *query.Composer
	classifier *classify.Classifier
	deb        *debounce.Debouncer
	agg        *dashboard.Aggregator
	presets    *preset.Registry
	presetIdx  int
	presetName string

	snapshot  *DataSnapshot
	list      list.Model
	board     BoardModel
	boardView bool
	analytics AnalyticsModel
	form      FormModel
	search    textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      KeyMap
	detail    *detailRenderer
	theme     Theme

	focus    focus
	showHelp bool

	status      string
	statusIsErr bool

	width, height int
}

// NewModel builds the root model. Nothing is fetched until Init.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	presets := opts.Presets
	if presets == nil {
		presets = preset.NewRegistry(preset.Builtin()...)
	}

	theme := DefaultTheme(nil)

	delegate := TicketDelegate{Tier: TierNormal, Now: now}
	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	si := textinput.New()
	si.Prompt = "/ "
	si.Placeholder = "search title or description"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	agg := dashboard.New(logger.Named("dashboard"))

	m := Model{
		backend:    opts.Backend,
		logger:     logger,
		ctx:        ctx,
		now:        now,
		copyFn:     copyFn,
		coord:      &Coordinator{},
		sync:       collection.New(opts.Query, collection.WithLogger(logger.Named("collection"))),
		composer:   query.NewComposer(opts.Query),
		classifier: classify.New(classify.WithMinLength(opts.MinDescription), classify.WithLogger(logger.Named("classify"))),
		deb:        debounce.New(opts.Debounce, debounce.WithClock(opts.Clock)),
		agg:        agg,
		presets:    presets,
		presetIdx:  -1,
		list:       l,
		board:      NewBoardModel(nil, theme),
		boardView:  opts.BoardView,
		analytics:  NewAnalyticsModel(agg),
		form:       NewFormModel(),
		search:     si,
		spinner:    sp,
		help:       help.New(),
		keys:       DefaultKeyMap(),
		detail:     newDetailRenderer(opts.Theme, logger),
		theme:      theme,
	}
	m.form.blur()
	m.rebuild()
	m.resize(100, 30)
	return m
}

// Init starts the first list fetch and the debounce listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(m.composer.Active()),
		waitForDebounce(m.deb),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TicketsLoadedMsg:
		switch m.sync.Apply(msg.Result) {
		case collection.Replaced, collection.Failed:
			m.rebuild()
		}
		return m, nil

	case StatsLoadedMsg:
		m.agg.Apply(msg.Result)
		return m, nil

	case ClassifyTimerMsg:
		cmds := []tea.Cmd{waitForDebounce(m.deb)}
		if req, ok := m.classifier.Fire(msg.Seq); ok {
			cmds = append(cmds, classifyCmd(m.ctx, m.backend, req))
		}
		return m, tea.Batch(cmds...)

	case ClassifiedMsg:
		if m.classifier.Apply(msg.Result) != classify.Discarded {
			if s, ok := m.classifier.Suggestion(); ok {
				m.form.Autofill(s)
			}
		}
		return m, nil

	case TicketCreatedMsg:
		m.form.submitting = false
		if msg.Err != nil {
			m.form.err = msg.Err
			return m, nil
		}
		m.logger.Info("ticket created", zap.String("id", string(msg.Ticket.ID)))
		m.form.Reset()
		m.form.blur()
		m.classifier.Reset()
		m.deb.Cancel()
		m.focus = focusList
		m.setStatus(fmt.Sprintf("Created ticket #%s", msg.Ticket.ID), false)
		return m, mutationCompletedCmd

	case StatusPatchedMsg:
		ok := m.sync.FinishPatch(msg.Result)
		m.rebuild()
		if !ok {
			m.setStatus(fmt.Sprintf("Could not update #%s: %v", msg.Result.ID, msg.Result.Err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("#%s is now %s", msg.Result.ID, msg.Result.Status), false)
		return m, mutationCompletedCmd

	case MutationCompletedMsg:
		m.coord.MutationCompleted()
		return m, m.observeMutations()

	case ClipboardMsg:
		if msg.Err != nil {
			m.setStatus("Clipboard unavailable: "+msg.Err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("Copied #%s", msg.ID), false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.deb.Stop()
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusForm:
		return m.handleFormKey(msg)
	}

	if key.Matches(msg, m.keys.SwitchView) {
		if m.coord.Toggle() == ViewAnalytics {
			return m, fetchStatsCmd(m.ctx, m.backend, m.agg.Load())
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		m.deb.Stop()
		return m, tea.Quit
	}

	if m.coord.Active() == ViewAnalytics {
		if key.Matches(msg, m.keys.Refresh) {
			return m, fetchStatsCmd(m.ctx, m.backend, m.agg.Load())
		}
		return m, nil
	}

	if m.focus == focusDetail {
		switch {
		case key.Matches(msg, m.keys.Detail), key.Matches(msg, m.keys.Cancel):
			m.focus = focusList
			m.resize(m.width, m.height)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.SetValue(m.composer.Draft())
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.CycleCategory):
		return m, m.applyQuery(m.composer.CycleCategory())
	case key.Matches(msg, m.keys.CyclePriority):
		return m, m.applyQuery(m.composer.CyclePriority())
	case key.Matches(msg, m.keys.CycleStatus):
		return m, m.applyQuery(m.composer.CycleStatus())
	case key.Matches(msg, m.keys.ClearFilters):
		m.presetName = ""
		return m, m.applyQuery(m.composer.Clear())
	case key.Matches(msg, m.keys.NextPreset):
		return m, m.nextPreset()

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refresh(m.composer.Active())
		if cmd == nil {
			m.setStatus("Refresh already in progress", false)
		}
		return m, cmd

	case key.Matches(msg, m.keys.ToggleBoard):
		m.boardView = !m.boardView
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		if m.SelectedTicket() != nil {
			m.focus = focusDetail
			m.resize(m.width, m.height)
		}
		return m, nil

	case key.Matches(msg, m.keys.StatusNext):
		return m, m.changeStatus(model.Status.Next)
	case key.Matches(msg, m.keys.StatusPrev):
		return m, m.changeStatus(model.Status.Prev)

	case key.Matches(msg, m.keys.Copy):
		if t := m.SelectedTicket(); t != nil {
			return m, copyCmd(m.copyFn, t.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.NewTicket):
		m.focus = focusForm
		m.form.setFocus(m.form.focus)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	return m, m.navigate(msg)
}

func (m *Model) navigate(msg tea.KeyMsg) tea.Cmd {
	if m.boardView {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.board.MoveUp()
		case key.Matches(msg, m.keys.Down):
			m.board.MoveDown()
		case key.Matches(msg, m.keys.Left):
			m.board.MoveLeft()
		case key.Matches(msg, m.keys.Right):
			m.board.MoveRight()
		case key.Matches(msg, m.keys.Top):
			m.board.MoveToTop()
		case key.Matches(msg, m.keys.Bottom):
			m.board.MoveToBottom()
		}
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.Top, m.keys.Bottom),
		msg.String() == "pgup", msg.String() == "pgdown":
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return cmd
	}
	return nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.composer.SetSearchDraft(m.search.Value())
		m.search.Blur()
		m.focus = focusList
		return m, m.applyQuery(m.composer.SubmitSearch())
	case tea.KeyEsc:
		m.search.Blur()
		m.focus = focusList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.composer.SetSearchDraft(m.search.Value())
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The form is read-only until the create call returns.
	if m.form.submitting && !key.Matches(msg, m.keys.Cancel) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.form.blur()
		m.focus = focusList
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.Accept):
		if s, ok := m.classifier.Suggestion(); ok {
			m.form.Accept(s)
		}
		return m, nil
	case key.Matches(msg, m.keys.Reject):
		m.classifier.Reject()
		m.form.ClearAutofill()
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.form.nextField()
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.form.prevField()
		return m, nil
	}

	switch m.form.focus {
	case fieldCategory, fieldPriority:
		switch {
		case key.Matches(msg, m.keys.ChoiceLeft):
			m.form.cycleChoice(-1)
		case key.Matches(msg, m.keys.ChoiceRight):
			m.form.cycleChoice(1)
		case key.Matches(msg, m.keys.Confirm):
			m.form.nextField()
		}
		return m, nil

	case fieldTitle:
		if key.Matches(msg, m.keys.Confirm) {
			m.form.nextField()
			return m, nil
		}
		var cmd tea.Cmd
		m.form.title, cmd = m.form.title.Update(msg)
		return m, cmd

	default:
		before := m.form.desc.Value()
		var cmd tea.Cmd
		m.form.desc, cmd = m.form.desc.Update(msg)
		if after := m.form.desc.Value(); after != before {
			m.descriptionEdited(after)
		}
		return m, cmd
	}
}

// descriptionEdited drops values filled in from the previous text's
// suggestion and restarts the debounce window.
func (m *Model) descriptionEdited(text string) {
	m.form.ClearAutofill()
	seq, schedule := m.classifier.Edit(text)
	if schedule {
		m.deb.Trigger(seq)
		return
	}
	m.deb.Cancel()
}

// submit validates locally and only then issues the create call.
func (m *Model) submit() tea.Cmd {
	if m.form.submitting {
		return nil
	}
	d := m.form.Draft()
	if err := d.Validate(); err != nil {
		m.form.err = err
		return nil
	}
	m.form.err = nil
	m.form.submitting = true
	return createTicketCmd(m.ctx, m.backend, d)
}

func (m *Model) changeStatus(step func(model.Status) model.Status) tea.Cmd {
	t := m.SelectedTicket()
	if t == nil {
		return nil
	}
	req, ok := m.sync.BeginPatch(t.ID, step(t.Status))
	if !ok {
		if _, busy := m.sync.Patching(t.ID); busy {
			m.setStatus(fmt.Sprintf("#%s is already being updated", t.ID), false)
		}
		return nil
	}
	m.rebuild()
	return patchStatusCmd(m.ctx, m.backend, req)
}

func (m *Model) nextPreset() tea.Cmd {
	all := m.presets.List()
	if len(all) == 0 {
		return nil
	}
	m.presetIdx = (m.presetIdx + 1) % len(all)
	p := all[m.presetIdx]
	m.presetName = p.Name
	m.setStatus("Preset: "+p.Name, false)
	return m.applyQuery(m.composer.Apply(p.Query()))
}

func (m *Model) applyQuery(q query.Query, changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	return m.refresh(q)
}

func (m *Model) refresh(q query.Query) tea.Cmd {
	req, ok := m.sync.Refresh(q)
	m.rebuild()
	if !ok {
		return nil
	}
	return fetchTicketsCmd(m.ctx, m.backend, req)
}

// observeMutations refetches the collection when the coordinator has
// counted a mutation this view has not reacted to yet.
func (m *Model) observeMutations() tea.Cmd {
	gen := m.coord.Generation()
	if gen == m.handledGen {
		return nil
	}
	m.handledGen = gen
	req := m.sync.NotifyMutated()
	m.rebuild()
	return fetchTicketsCmd(m.ctx, m.backend, req)
}

func (m *Model) rebuild() {
	var selID model.TicketID
	if it, ok := m.list.SelectedItem().(TicketItem); ok {
		selID = it.Ticket.ID
	}
	m.snapshot = BuildSnapshot(m.sync, m.now())
	items := make([]list.Item, len(m.snapshot.Items))
	for i, it := range m.snapshot.Items {
		items[i] = it
	}
	m.list.SetItems(items)
	if i, ok := m.snapshot.ByID[selID]; ok {
		m.list.Select(i)
	}
	m.board.SetItems(m.snapshot.Items)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.list.SetDelegate(TicketDelegate{Tier: tierFor(w), Now: m.now})
	m.list.SetSize(m.listWidth(), m.bodyHeight())
	m.analytics.SetSize(w, m.bodyHeight())
	m.form.SetWidth(w)
	m.search.Width = w - 4
	m.help.Width = w
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
}

func (m Model) bodyHeight() int {
	h := m.height - 5
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) listWidth() int {
	if m.focus == focusDetail && m.width >= 100 {
		return m.width / 2
	}
	return m.width
}

// FocusState names the component receiving keys.
func (m Model) FocusState() string {
	if m.coord.Active() == ViewAnalytics {
		return "analytics"
	}
	switch m.focus {
	case focusSearch:
		return "search"
	case focusForm:
		return "form"
	case focusDetail:
		return "detail"
	}
	if m.boardView {
		return "board"
	}
	return "list"
}

// ActiveView returns the visible top-level view.
func (m Model) ActiveView() ViewKind { return m.coord.Active() }

// IsBoardView reports whether tickets are shown as status columns.
func (m Model) IsBoardView() bool { return m.boardView }

// Tickets returns the displayed collection.
func (m Model) Tickets() []model.Ticket { return m.sync.Tickets() }

// Loading reports whether a list fetch is in flight.
func (m Model) Loading() bool { return m.sync.Loading() }

// LoadErr returns the last list failure, if the latest fetch failed.
func (m Model) LoadErr() error { return m.sync.Err() }

// ActiveQuery returns the filter currently in effect.
func (m Model) ActiveQuery() query.Query { return m.composer.Active() }

// SearchDraft returns the search text typed but not necessarily applied.
func (m Model) SearchDraft() string { return m.composer.Draft() }

// FormDraft returns the new-ticket form's content.
func (m Model) FormDraft() model.Draft { return m.form.Draft() }

// FormErr returns the form's validation or submit error.
func (m Model) FormErr() error { return m.form.err }

// Submitting reports whether a create call is in flight.
func (m Model) Submitting() bool { return m.form.submitting }

// Suggestion returns the classifier's current suggestion.
func (m Model) Suggestion() (model.Suggestion, bool) { return m.classifier.Suggestion() }

// ClassifierState returns the classifier lifecycle state.
func (m Model) ClassifierState() classify.State { return m.classifier.State() }

// StatsPhase returns the analytics load state.
func (m Model) StatsPhase() dashboard.Phase { return m.agg.Phase() }

// StatsSummary returns the last loaded analytics summary.
func (m Model) StatsSummary() dashboard.Summary { return m.agg.Summary() }

// MutationGeneration returns how many mutations have completed.
func (m Model) MutationGeneration() uint64 { return m.coord.Generation() }

// StatusMessage returns the transient footer message.
func (m Model) StatusMessage() string { return m.status }

// PatchPending reports whether a status change for id is in flight.
func (m Model) PatchPending(id model.TicketID) bool {
	_, ok := m.sync.Patching(id)
	return ok
}

// PatchErr returns the last failed status change for id.
func (m Model) PatchErr(id model.TicketID) error { return m.sync.PatchErr(id) }

// SelectedTicket returns the ticket under the cursor.
func (m Model) SelectedTicket() *model.Ticket {
	if m.boardView {
		return m.board.SelectedTicket()
	}
	it, ok := m.list.SelectedItem().(TicketItem)
	if !ok {
		return nil
	}
	return m.snapshot.GetTicket(it.Ticket.ID)
}

func (m Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	switch {
	case m.coord.Active() == ViewAnalytics:
		body = m.analytics.View(m.spinner.View())
	case m.focus == focusForm:
		body = m.form.View(m.classifier, m.spinner.View())
	default:
		body = m.renderTickets()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	tabs := []string{}
	for _, v := range []ViewKind{ViewTickets, ViewAnalytics} {
		label := strings.ToUpper(v.String()[:1]) + v.String()[1:]
		if v == m.coord.Active() {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	left := HeaderStyle.Render("🎫 Ticket Desk") + " " + strings.Join(tabs, " ")

	right := fmt.Sprintf("%d tickets", len(m.snapshot.Tickets))
	if m.sync.Loading() || m.agg.Phase() == dashboard.Loading {
		right = m.spinner.View() + " " + right
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + HelpStyle.Render(right)
}

func (m Model) renderFilterBar() string {
	if m.focus == focusSearch {
		return m.search.View()
	}
	q := m.composer.Active()
	search := q.Search
	if search == "" {
		search = "(none)"
	}
	parts := []string{
		LabelStyle.Render("search:") + " " + search,
		LabelStyle.Render("category:") + " " + orAny(string(q.Category)),
		LabelStyle.Render("priority:") + " " + orAny(string(q.Priority)),
		LabelStyle.Render("status:") + " " + orAny(string(q.Status)),
	}
	if m.presetName != "" {
		parts = append(parts, LabelStyle.Render("preset:")+" "+m.presetName)
	}
	bar := strings.Join(parts, "  ")
	if m.composer.DraftPending() {
		bar += "  " + HelpStyle.Render("(press / then enter to apply search)")
	}
	return bar
}

func (m Model) renderTickets() string {
	snap := m.snapshot
	lines := []string{m.renderFilterBar()}

	if err := snap.Err; err != nil {
		if snap.Loaded {
			lines = append(lines, WarnStyle.Render("⚠ Refresh failed: "+err.Error()+" (showing previous results, r to retry)"))
		} else {
			lines = append(lines, ErrorStyle.Render("✗ Could not load tickets: "+err.Error()+" (r to retry)"))
		}
	}

	var content string
	switch {
	case !snap.Loaded && m.sync.Loading():
		content = m.spinner.View() + " Loading tickets…"
	case snap.IsEmpty() && snap.Loaded:
		content = HelpStyle.Render("No tickets match " + snap.Query.String())
	case snap.IsEmpty():
		content = ""
	case m.boardView:
		content = m.board.View(m.width, m.bodyHeight())
	default:
		content = m.list.View()
	}

	if m.focus == focusDetail {
		if t := m.SelectedTicket(); t != nil {
			it, _ := snap.Item(t.ID)
			if m.width >= 100 {
				dw := m.width - m.listWidth() - 2
				content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.detail.Render(it, dw, m.now()))
			} else {
				content = m.detail.Render(it, m.width-2, m.now())
			}
		}
	}

	lines = append(lines, content)
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	var status string
	if m.status != "" {
		if m.statusIsErr {
			status = ErrorStyle.Render(m.status)
		} else {
			status = HelpStyle.Render(m.status)
		}
	}

	h := m.help
	h.ShowAll = m.showHelp
	var keys string
	switch {
	case m.coord.Active() == ViewAnalytics:
		keys = h.View(analyticsHelp{m.keys})
	case m.focus == focusForm:
		keys = h.View(formHelp{m.keys})
	default:
		keys = h.View(listHelp{m.keys})
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, keys)
}
