package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestValidate_BuiltInTables(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("built-in catalog failed validation: %v", err)
	}
}

func TestConditions_MatchStyleKeys(t *testing.T) {
	conds := Conditions()
	styles := TagStyles()
	if len(conds) != len(styles) {
		t.Fatalf("expected %d style entries, got %d", len(conds), len(styles))
	}
	for _, code := range conds {
		s, ok := styles[code]
		if !ok {
			t.Errorf("condition %q has no style", code)
			continue
		}
		if s.IsZero() {
			t.Errorf("condition %q has incomplete style %+v", code, s)
		}
	}
}

func TestConditionTags_Order(t *testing.T) {
	tags := ConditionTags()
	conds := Conditions()
	for i, tag := range tags {
		if tag.Code != conds[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tag.Code, conds[i])
		}
	}
}

func TestAppointmentTypes_PositiveDurations(t *testing.T) {
	types := AppointmentTypes()
	if len(types) != 10 {
		t.Fatalf("expected 10 appointment types, got %d", len(types))
	}
	for _, a := range types {
		if a.Duration <= 0 {
			t.Errorf("appointment type %q has duration %d", a.Value, a.Duration)
		}
	}
}

func TestPrescriptionTypes_ValidClasses(t *testing.T) {
	want := []PrescriptionClass{PrescriptionComum, PrescriptionC, PrescriptionB, PrescriptionA}
	got := PrescriptionTypes()
	if len(got) != len(want) {
		t.Fatalf("expected %d prescription types, got %d", len(want), len(got))
	}
	for i, p := range got {
		if !p.Value.Valid() {
			t.Errorf("prescription type %q has invalid class %q", p.Label, p.Value)
		}
		if p.Value != want[i] {
			t.Errorf("prescriptionTypes[%d] = %q, want %q", i, p.Value, want[i])
		}
	}
	if PrescriptionClass("X").Valid() {
		t.Error("expected class X to be invalid")
	}
}

func TestLookupStyle_HAS(t *testing.T) {
	s, err := LookupStyle("HAS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Classes() != "bg-red-100 text-red-700 border-red-200" {
		t.Errorf("unexpected HAS style: %q", s.Classes())
	}
}

func TestLookupStyle_CaseInsensitive(t *testing.T) {
	s, err := LookupStyle(" dm ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Background != "bg-blue-100" {
		t.Errorf("expected blue background, got %q", s.Background)
	}
}

func TestLookupStyle_Unknown(t *testing.T) {
	_, err := LookupStyle("UNKNOWN")
	if !errors.Is(err, ErrUnknownCondition) {
		t.Fatalf("expected ErrUnknownCondition, got %v", err)
	}
}

func TestProvider_StyleFor(t *testing.T) {
	var buf bytes.Buffer
	p := NewProvider(zerolog.New(&buf))

	if got := p.StyleFor("HAS"); got.Text != "text-red-700" {
		t.Errorf("expected red text for HAS, got %q", got.Text)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output for mapped code, got %q", buf.String())
	}

	first := p.StyleFor("UNKNOWN")
	second := p.StyleFor("unknown")
	if first != DefaultTagStyle || second != DefaultTagStyle {
		t.Errorf("expected default style for unmapped code, got %+v / %+v", first, second)
	}
	if n := strings.Count(buf.String(), "no style mapped"); n != 1 {
		t.Errorf("expected exactly one warning, got %d: %s", n, buf.String())
	}
}

func TestProvider_WarnedCodesAreBounded(t *testing.T) {
	var buf bytes.Buffer
	p := NewProvider(zerolog.New(&buf))
	p.limit = 4

	for i := 0; i < 50; i++ {
		p.StyleFor(fmt.Sprintf("X%d", i))
		if len(p.warned) > p.limit {
			t.Fatalf("remembered %d codes, limit is %d", len(p.warned), p.limit)
		}
	}
	if n := strings.Count(buf.String(), "no style mapped"); n != 50 {
		t.Errorf("expected one warning per new code, got %d", n)
	}
}

func TestAppointmentTypeByValue(t *testing.T) {
	a, err := AppointmentTypeByValue("Infiltração")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Label != "Procedimento (40m)" {
		t.Errorf("unexpected label %q", a.Label)
	}

	if _, err := AppointmentTypeByValue("Cirurgia"); !errors.Is(err, ErrUnknownAppointmentType) {
		t.Errorf("expected ErrUnknownAppointmentType, got %v", err)
	}
}

func TestDuration(t *testing.T) {
	d, err := Duration("Renovação")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 5*time.Minute {
		t.Errorf("expected 5m, got %s", d)
	}
}

func TestParseMicroarea(t *testing.T) {
	tests := []struct {
		label   string
		number  int
		agent   string
		wantErr bool
	}{
		{"Microárea 1 - ANGÉLICA", 1, "ANGÉLICA", false},
		{"Microárea 6 - MARIA ROSA", 6, "MARIA ROSA", false},
		{"Microárea - SEM NUMERO", 0, "", true},
		{"Microárea 3", 0, "", true},
		{"Microárea 0 - ZERO", 0, "", true},
		{"Microárea 2 - ", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			m, err := ParseMicroarea(tt.label)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.label)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Number != tt.number || m.Agent != tt.agent {
				t.Errorf("got %+v", m)
			}
		})
	}
}

func TestMicroareas_Parsed(t *testing.T) {
	areas := Microareas()
	if len(areas) != 6 {
		t.Fatalf("expected 6 microareas, got %d", len(areas))
	}
	for i, a := range areas {
		if a.Number != i+1 {
			t.Errorf("microareas[%d].Number = %d", i, a.Number)
		}
	}
}

func TestValidate_DetectsDrift(t *testing.T) {
	conds := []string{"HAS", "NOVA"}
	styles := map[string]TagStyle{
		"HAS":   {"bg-red-100", "text-red-700", "border-red-200"},
		"ORFAO": {"bg-x", "text-x", "border-x"},
	}
	appts := []AppointmentType{{Label: "Zero", Value: "Zero", Duration: 0}}
	rx := []PrescriptionType{{Label: "Verde", Value: "V"}}
	areas := []string{"sem separador"}

	err := validate(conds, styles, appts, rx, areas)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		`condition "NOVA" has no style`,
		`style "ORFAO" has no matching condition`,
		`duration must be positive`,
		`invalid class "V"`,
		`missing separator`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestAccessors_ReturnCopies(t *testing.T) {
	p := Professions()
	p[0] = "Dentista"
	if Professions()[0] != "Médico" {
		t.Error("mutating the returned slice changed the catalog")
	}

	styles := TagStyles()
	delete(styles, "HAS")
	if _, err := LookupStyle("HAS"); err != nil {
		t.Error("mutating the returned map changed the catalog")
	}

	log := Changelog()
	log[0].Changes[0] = "x"
	if Changelog()[0].Changes[0] == "x" {
		t.Error("mutating changelog changes altered the catalog")
	}
}

func TestChangelog_NewestFirst(t *testing.T) {
	log := Changelog()
	if len(log) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(log))
	}
	if log[0].Version != "1.5.0" || log[2].Version != "1.3.0" {
		t.Errorf("unexpected order: %s ... %s", log[0].Version, log[2].Version)
	}
	for _, v := range log {
		if _, err := time.Parse("02/01/2006", v.Date); err != nil {
			t.Errorf("version %s has bad date %q", v.Version, v.Date)
		}
	}
}

func TestApp(t *testing.T) {
	info := App()
	if info.Name != "Gestão eSF" || info.Version != "1.6.0" {
		t.Errorf("unexpected app info: %+v", info)
	}
}
