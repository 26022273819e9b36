package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every binding; help renders from it.
type KeyMap struct {
	Up, Down, Left, Right key.Binding
	Top, Bottom           key.Binding
	SwitchView            key.Binding
	Search                key.Binding
	CycleCategory         key.Binding
	CyclePriority         key.Binding
	CycleStatus           key.Binding
	ClearFilters          key.Binding
	NextPreset            key.Binding
	Refresh               key.Binding
	ToggleBoard           key.Binding
	Detail                key.Binding
	StatusNext            key.Binding
	StatusPrev            key.Binding
	Copy                  key.Binding
	NewTicket             key.Binding
	Help                  key.Binding
	Quit                  key.Binding
	ForceQuit             key.Binding

	// Form
	NextField   key.Binding
	PrevField   key.Binding
	Accept      key.Binding
	Reject      key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	ChoiceLeft  key.Binding
	ChoiceRight key.Binding
	Confirm     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Top:           key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		SwitchView:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tickets/analytics")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		CycleCategory: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		CyclePriority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority")),
		CycleStatus:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		ClearFilters:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		NextPreset:    key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "preset")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		ToggleBoard:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "board")),
		Detail:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		StatusNext:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next status")),
		StatusPrev:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev status")),
		Copy:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		NewTicket:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new ticket")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:     key.NewBinding(key.WithKeys("ctrl+c")),

		NextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Accept:      key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "use suggestion")),
		Reject:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "dismiss suggestion")),
		Submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ChoiceLeft:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous choice")),
		ChoiceRight: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next choice")),
		Confirm:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	}
}

type listHelp struct{ k KeyMap }

func (h listHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Search, h.k.CycleCategory, h.k.CyclePriority, h.k.CycleStatus, h.k.NewTicket, h.k.StatusNext, h.k.SwitchView, h.k.Help, h.k.Quit}
}

func (h listHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Left, h.k.Right, h.k.Top, h.k.Bottom},
		{h.k.Search, h.k.CycleCategory, h.k.CyclePriority, h.k.CycleStatus, h.k.ClearFilters, h.k.NextPreset},
		{h.k.NewTicket, h.k.StatusNext, h.k.StatusPrev, h.k.Detail, h.k.Copy, h.k.ToggleBoard},
		{h.k.Refresh, h.k.SwitchView, h.k.Help, h.k.Quit},
	}
}

type formHelp struct{ k KeyMap }

func (h formHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.NextField, h.k.ChoiceRight, h.k.Accept, h.k.Reject, h.k.Submit, h.k.Cancel}
}

func (h formHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

type analyticsHelp struct{ k KeyMap }

func (h analyticsHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Refresh, h.k.SwitchView, h.k.Quit}
}

func (h analyticsHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
