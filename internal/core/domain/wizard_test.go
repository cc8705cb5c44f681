package domain

import (
	"strings"
	"testing"
)

func TestFormData_WithField(t *testing.T) {
	var f FormData
	f, ok := f.WithField(FieldBusinessName, "Acme")
	if !ok || f.BusinessName != "Acme" {
		t.Fatalf("WithField(businessName) = %+v, %v", f, ok)
	}
	if _, ok := f.WithField("nickname", "x"); ok {
		t.Fatalf("unknown field accepted")
	}
	if f == (FormData{}) {
		t.Fatalf("a changed form must not equal the empty form")
	}
}

func TestStep_MissingFields(t *testing.T) {
	step := WizardSteps[1]
	if got := step.MissingFields(FormData{BusinessName: "   "}); len(got) != 1 || got[0] != FieldBusinessName {
		t.Fatalf("blank value should count as missing, got %v", got)
	}
	if got := step.MissingFields(FormData{BusinessName: "Acme"}); len(got) != 0 {
		t.Fatalf("expected nothing missing, got %v", got)
	}
	for _, i := range []int{0, ReviewStep, ResultStep} {
		if len(WizardSteps[i].Required) != 0 {
			t.Fatalf("step %d must not require input", i)
		}
	}
}

func TestIdentityShape(t *testing.T) {
	local := NewLocalID()
	if !strings.HasPrefix(local, LocalIDPrefix) || IsCanonicalID(local) {
		t.Fatalf("local id %q must not look canonical", local)
	}
	if !IsCanonicalID("7f3c0a4e-2b1d-4c59-9a7e-0d2f6b8e1c34") {
		t.Fatalf("hyphenated uuid must be canonical")
	}
}
