package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"ticket_desk/pkg/classify"
	"ticket_desk/pkg/model"
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldCategory
	fieldPriority
	fieldCount
)

func (f formField) String() string {
	switch f {
	case fieldTitle:
		return "title"
	case fieldDescription:
		return "description"
	case fieldCategory:
		return "category"
	default:
		return "priority"
	}
}

// FormModel is the new-ticket form. Category and priority start empty;
// a classification result fills whichever of them the user has not
// picked by hand.
type FormModel struct {
	title textinput.Model
	desc  textarea.Model

	category        model.Category
	priority        model.Priority
	categoryTouched bool
	priorityTouched bool

	focus      formField
	submitting bool
	err        error
	width      int
}

func NewFormModel() FormModel {
	ti := textinput.New()
	ti.Placeholder = "Short summary of the problem"
	ti.CharLimit = model.MaxTitleLength
	ti.Prompt = ""

	ta := textarea.New()
	ta.Placeholder = "Describe what happened…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(6)

	f := FormModel{title: ti, desc: ta, width: 80}
	f.setFocus(fieldTitle)
	return f
}

func (f *FormModel) SetWidth(w int) {
	f.width = w
	inner := w - 6
	if inner < 20 {
		inner = 20
	}
	f.title.Width = inner
	f.desc.SetWidth(inner)
}

func (f *FormModel) setFocus(field formField) {
	f.focus = field
	f.title.Blur()
	f.desc.Blur()
	switch field {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.desc.Focus()
	}
}

func (f *FormModel) blur() {
	f.title.Blur()
	f.desc.Blur()
}

func (f *FormModel) nextField() { f.setFocus((f.focus + 1) % fieldCount) }
func (f *FormModel) prevField() { f.setFocus((f.focus + fieldCount - 1) % fieldCount) }

// cycleChoice steps the focused selector through "unset" and each value.
// Choosing by hand stops later suggestions from overwriting the field.
func (f *FormModel) cycleChoice(dir int) {
	switch f.focus {
	case fieldCategory:
		f.category = step(model.Categories, f.category, dir)
		f.categoryTouched = true
	case fieldPriority:
		f.priority = step(model.Priorities, f.priority, dir)
		f.priorityTouched = true
	}
}

func step[T comparable](values []T, cur T, dir int) T {
	var zero T
	all := append([]T{zero}, values...)
	idx := 0
	for i, v := range all {
		if v == cur {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(all)) % len(all)
	return all[idx]
}

// Autofill copies s into the fields the user has not set by hand.
func (f *FormModel) Autofill(s model.Suggestion) {
	if !f.categoryTouched {
		f.category = s.Category
	}
	if !f.priorityTouched {
		f.priority = s.Priority
	}
}

// Accept copies s into both fields. They stay editable.
func (f *FormModel) Accept(s model.Suggestion) {
	f.category = s.Category
	f.priority = s.Priority
	f.categoryTouched = true
	f.priorityTouched = true
}

// ClearAutofill undoes Autofill for fields the user never touched.
func (f *FormModel) ClearAutofill() {
	if !f.categoryTouched {
		f.category = ""
	}
	if !f.priorityTouched {
		f.priority = ""
	}
}

// Reset empties the form after a successful submit.
func (f *FormModel) Reset() {
	f.title.Reset()
	f.desc.Reset()
	f.category = ""
	f.priority = ""
	f.categoryTouched = false
	f.priorityTouched = false
	f.submitting = false
	f.err = nil
	f.setFocus(fieldTitle)
}

// Draft returns the form content as a ticket draft.
func (f FormModel) Draft() model.Draft {
	d := model.NewDraft()
	d.Title = f.title.Value()
	d.Description = f.desc.Value()
	d.Category = f.category
	d.Priority = f.priority
	return d
}

func (f FormModel) View(c *classify.Classifier, spin string) string {
	var sb strings.Builder

	label := func(field formField, text string) string {
		if f.focus == field {
			return lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render("▸ " + text)
		}
		return LabelStyle.Render("  " + text)
	}
	var verr *model.ValidationError
	errors.As(f.err, &verr)
	fieldErr := func(name string) string {
		if verr != nil && verr.Has(name) {
			return " " + ErrorStyle.Render("required")
		}
		return ""
	}

	sb.WriteString(DetailTitleStyle.Render("New Ticket"))
	sb.WriteString("\n")

	sb.WriteString(label(fieldTitle, "Title") + fieldErr("title") + "\n")
	sb.WriteString("  " + f.title.View() + "\n\n")

	sb.WriteString(label(fieldDescription, "Description") + fieldErr("description") + "\n")
	sb.WriteString(f.desc.View() + "\n\n")

	choice := func(v string, touched bool) string {
		text := "‹ " + orAny(v) + " ›"
		if v != "" && !touched {
			text += HelpStyle.Render(" (suggested)")
		}
		return text
	}
	sb.WriteString(label(fieldCategory, "Category") + "  " + choice(string(f.category), f.categoryTouched) + "\n")
	sb.WriteString(label(fieldPriority, "Priority") + "  " + choice(string(f.priority), f.priorityTouched) + "\n\n")

	sb.WriteString(suggestionLine(c, spin))
	sb.WriteString("\n")

	switch {
	case f.submitting:
		sb.WriteString(spin + " Submitting…")
	case f.err != nil:
		sb.WriteString(ErrorStyle.Render("✗ " + f.err.Error()))
	}

	return FocusedPanelStyle.Width(f.width - 2).Render(sb.String())
}

func suggestionLine(c *classify.Classifier, spin string) string {
	switch c.State() {
	case classify.Pending:
		return HelpStyle.Render("Waiting for you to stop typing…")
	case classify.InFlight:
		return HelpStyle.Render(spin + " Classifying…")
	}
	s, ok := c.Suggestion()
	if !ok {
		return HelpStyle.Render("Suggestions appear once the description is long enough.")
	}
	if c.Degraded() {
		return WarnStyle.Render(fmt.Sprintf("Classification unavailable, defaulting to %s / %s", s.Category, s.Priority))
	}
	return fmt.Sprintf("Suggested: %s / %s  %s",
		lipgloss.NewStyle().Bold(true).Render(string(s.Category)),
		lipgloss.NewStyle().Bold(true).Render(string(s.Priority)),
		HelpStyle.Render("ctrl+a use • ctrl+r dismiss"),
	)
}
