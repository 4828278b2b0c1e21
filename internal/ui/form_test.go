package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/coregym/internal/forms"
)

func TestFormFocusWraps(t *testing.T) {
	f := newSignInForm()
	f.focusFirst()
	if !f.fields[0].input.Focused() {
		t.Fatalf("first field should be focused")
	}

	f.prev()
	if f.focus != 1 || !f.fields[1].input.Focused() || f.fields[0].input.Focused() {
		t.Fatalf("prev from first should wrap to last, focus=%d", f.focus)
	}
	f.next()
	if f.focus != 0 {
		t.Fatalf("next from last should wrap to first, focus=%d", f.focus)
	}
}

func TestFormSetErrorsFocusesFirstInvalid(t *testing.T) {
	f := newRegisterForm()
	f.focusFirst()

	f.setErrors(forms.FieldErrors{
		{Field: forms.FieldPassword, Message: "Min 8 characters"},
		{Field: forms.FieldConfirmPassword, Message: "Passwords do not match"},
	})

	if f.focus != 3 {
		t.Fatalf("focus = %d, want password field", f.focus)
	}
	if f.fields[0].err != "" {
		t.Fatalf("first name error = %q, want none", f.fields[0].err)
	}
	if f.fields[4].err != "Passwords do not match" {
		t.Fatalf("confirm error = %q", f.fields[4].err)
	}
}

func TestFormEditingClearsFieldError(t *testing.T) {
	f := newSignInForm()
	f.focusFirst()
	f.setError(forms.FieldEmail, "Email is required")

	f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})

	if f.fields[0].err != "" {
		t.Fatalf("error should clear on edit, got %q", f.fields[0].err)
	}
	if got := f.signInForm().Email; got != "a" {
		t.Fatalf("email = %q, want a", got)
	}
}

func TestFormIgnoresInputWhileSubmitting(t *testing.T) {
	f := newSignInForm()
	f.focusFirst()
	f.submitting = true

	f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	if got := f.value(forms.FieldEmail); got != "" {
		t.Fatalf("value changed while submitting: %q", got)
	}
}

func TestFormReset(t *testing.T) {
	f := newRegisterForm()
	f.setValue(forms.FieldEmail, "ada@example.com")
	f.setError(forms.FieldEmail, "taken")
	f.submitting = true

	f.reset()

	if f.value(forms.FieldEmail) != "" || f.fields[2].err != "" || f.submitting {
		t.Fatalf("reset left state behind: %+v", f.fields[2])
	}
}
