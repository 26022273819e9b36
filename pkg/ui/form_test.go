package ui

import (
	"testing"

	"ticket_desk/pkg/model"
)

func TestFormChoiceCycle(t *testing.T) {
	f := NewFormModel()
	f.setFocus(fieldCategory)

	f.cycleChoice(1)
	if f.category != model.CategoryBilling || !f.categoryTouched {
		t.Fatalf("category = %q touched = %v", f.category, f.categoryTouched)
	}
	f.cycleChoice(-1)
	if f.category != "" {
		t.Errorf("stepping back from the first value should unset, got %q", f.category)
	}
	f.cycleChoice(-1)
	if f.category != model.CategoryGeneral {
		t.Errorf("wrap around = %q, want general", f.category)
	}

	f.setFocus(fieldPriority)
	f.cycleChoice(1)
	f.cycleChoice(1)
	if f.priority != model.PriorityMedium {
		t.Errorf("priority = %q", f.priority)
	}
}

func TestFormAutofillRespectsTouched(t *testing.T) {
	s := model.Suggestion{Category: model.CategoryAccount, Priority: model.PriorityHigh}

	tests := []struct {
		name         string
		prepare      func(f *FormModel)
		wantCategory model.Category
		wantPriority model.Priority
	}{
		{"untouched", func(f *FormModel) {}, model.CategoryAccount, model.PriorityHigh},
		{"category chosen", func(f *FormModel) {
			f.setFocus(fieldCategory)
			f.cycleChoice(1)
		}, model.CategoryBilling, model.PriorityHigh},
		{"category cleared by hand", func(f *FormModel) {
			f.setFocus(fieldCategory)
			f.cycleChoice(1)
			f.cycleChoice(-1)
		}, "", model.PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormModel()
			tt.prepare(&f)
			f.Autofill(s)
			if f.category != tt.wantCategory || f.priority != tt.wantPriority {
				t.Errorf("got %q/%q, want %q/%q", f.category, f.priority, tt.wantCategory, tt.wantPriority)
			}
		})
	}
}

func TestFormResetAndDraft(t *testing.T) {
	f := NewFormModel()
	f.title.SetValue("Printer on fire")
	f.desc.SetValue("Smoke everywhere")
	f.Accept(model.Suggestion{Category: model.CategoryTechnical, Priority: model.PriorityCritical})

	d := f.Draft()
	if d.Title != "Printer on fire" || d.Description != "Smoke everywhere" || d.Category != model.CategoryTechnical || d.Status != model.StatusOpen {
		t.Errorf("draft = %+v", d)
	}

	f.ClearAutofill()
	if f.category != model.CategoryTechnical {
		t.Error("accepted values are the user's and must survive ClearAutofill")
	}

	f.Reset()
	if d := f.Draft(); d.Title != "" || d.Description != "" || d.Category != "" || d.Priority != "" {
		t.Errorf("after reset draft = %+v", d)
	}
	if f.categoryTouched || f.priorityTouched || f.focus != fieldTitle {
		t.Error("reset should clear touched flags and refocus the title")
	}
}
