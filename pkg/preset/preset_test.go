package preset

import (
	"os"
	"path/filepath"
	"testing"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

func TestBuiltinPresetsAreValid(t *testing.T) {
	for _, p := range Builtin() {
		if err := p.Validate(); err != nil {
			t.Errorf("builtin %q: %v", p.Name, err)
		}
	}
	r := NewRegistry(Builtin()...)
	urgent, ok := r.Get("urgent")
	if !ok {
		t.Fatal("urgent preset missing")
	}
	want := query.Query{Priority: model.PriorityCritical, Status: model.StatusOpen}
	if urgent.Query() != want {
		t.Errorf("urgent query = %+v, want %+v", urgent.Query(), want)
	}
	if all, _ := r.Get("all"); !all.Query().IsZero() {
		t.Error("the all preset should not constrain the list")
	}
}

func TestParse(t *testing.T) {
	presets, err := Parse([]byte(`
presets:
  - name: vpn
    description: VPN trouble
    filters:
      search: "  vpn   drop "
      category: technical
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 1 {
		t.Fatalf("got %d presets", len(presets))
	}
	q := presets[0].Query()
	if q.Search != "vpn drop" || q.Category != model.CategoryTechnical {
		t.Errorf("query = %+v", q)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown category": "presets:\n  - name: x\n    filters: {category: hardware}\n",
		"unknown priority": "presets:\n  - name: x\n    filters: {priority: p0}\n",
		"unknown status":   "presets:\n  - name: x\n    filters: {status: blocked}\n",
		"missing name":     "presets:\n  - filters: {status: open}\n",
		"malformed":        "presets: {",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_OverlaysBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	doc := `
presets:
  - name: open
    description: Open and high
    filters: {status: open, priority: high}
  - name: accounts
    filters: {category: account}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != len(Builtin())+1 {
		t.Errorf("len = %d", r.Len())
	}
	open, _ := r.Get("open")
	if open.Filters.Priority != "high" {
		t.Errorf("user preset should replace the builtin: %+v", open)
	}
	list := r.List()
	if list[1].Name != "open" || list[len(list)-1].Name != "accounts" {
		t.Errorf("order = %v", r.Names())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing explicit file should fail")
	}
	r, err = Load("")
	if err != nil || r.Len() != len(Builtin()) {
		t.Errorf("Load(\"\") = %v, %v", r, err)
	}
}
