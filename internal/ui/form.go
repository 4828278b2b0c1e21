package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/coregym/internal/forms"
)

// formField is one labelled input. name matches the forms.Field* constants.
type formField struct {
	name  string
	label string
	input textinput.Model
	err   string
}

// formModel holds the inputs of a sign-in or registration form.
type formModel struct {
	title    string
	subtitle string
	fields   []formField
	focus    int

	submitting bool
	busyLabel  string
	submit     string
	footer     string
}

func newField(name, label, placeholder string, secret bool) formField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = FormWidth - 8
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return formField{name: name, label: label, input: ti}
}

// focusFirst focuses the first input and blurs the rest.
func (f *formModel) focusFirst() tea.Cmd {
	return f.setFocus(0)
}

func (f *formModel) setFocus(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i%len(f.fields) + len(f.fields)) % len(f.fields)
	f.focus = i
	var cmd tea.Cmd
	for idx := range f.fields {
		if idx == i {
			cmd = f.fields[idx].input.Focus()
			continue
		}
		f.fields[idx].input.Blur()
	}
	return cmd
}

func (f *formModel) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *formModel) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// update forwards msg to the focused input. Editing a field clears its
// error, matching revalidate-on-change.
func (f *formModel) update(msg tea.Msg) tea.Cmd {
	if f.submitting || len(f.fields) == 0 {
		return nil
	}
	field := &f.fields[f.focus]
	before := field.input.Value()
	var cmd tea.Cmd
	field.input, cmd = field.input.Update(msg)
	if field.input.Value() != before {
		field.err = ""
	}
	return cmd
}

func (f *formModel) value(name string) string {
	for _, field := range f.fields {
		if field.name == name {
			return field.input.Value()
		}
	}
	return ""
}

func (f *formModel) setValue(name, value string) {
	for i := range f.fields {
		if f.fields[i].name == name {
			f.fields[i].input.SetValue(value)
		}
	}
}

// setErrors replaces all field errors and focuses the first invalid field.
func (f *formModel) setErrors(errs forms.FieldErrors) tea.Cmd {
	first := -1
	for i := range f.fields {
		f.fields[i].err = errs.Get(f.fields[i].name)
		if f.fields[i].err != "" && first < 0 {
			first = i
		}
	}
	if first >= 0 {
		return f.setFocus(first)
	}
	return nil
}

func (f *formModel) setError(name, msg string) tea.Cmd {
	for i := range f.fields {
		if f.fields[i].name == name {
			f.fields[i].err = msg
			return f.setFocus(i)
		}
	}
	return nil
}

func (f *formModel) reset() {
	for i := range f.fields {
		f.fields[i].input.SetValue("")
		f.fields[i].err = ""
	}
	f.submitting = false
}

func (f formModel) view(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.title))
	b.WriteString("\n")
	if f.subtitle != "" {
		b.WriteString(styles.MutedText.Render(f.subtitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, field := range f.fields {
		b.WriteString(styles.Text.Bold(true).Render(field.label))
		b.WriteString("\n")
		box := styles.Input
		if i == f.focus {
			box = styles.Focused
		}
		b.WriteString(box.Width(FormWidth - 6).Render(field.input.View()))
		b.WriteString("\n")
		if field.err != "" {
			b.WriteString(styles.DangerText.Render(field.err))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	label := f.submit
	if f.submitting {
		label = f.busyLabel
	}
	button := lipgloss.NewStyle().Padding(0, 2).Bold(true)
	if f.submitting {
		b.WriteString(button.Inherit(styles.MutedText).Render(label))
	} else {
		b.WriteString(button.Inherit(styles.Selected).Render(label))
	}
	if f.footer != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render(f.footer))
	}
	return styles.Panel.Width(FormWidth).Render(b.String())
}

func newSignInForm() formModel {
	return formModel{
		title:     "Welcome back",
		subtitle:  "Enter your credentials to access your account",
		submit:    "Log in",
		busyLabel: "Authorizing...",
		footer:    "Don't have an account? ctrl+r to register",
		fields: []formField{
			newField(forms.FieldEmail, "Email", "your@email.com", false),
			newField(forms.FieldPassword, "Password", "*********", true),
		},
	}
}

func newRegisterForm() formModel {
	return formModel{
		title:     "Join Core Gym Club",
		subtitle:  "Create your account to unlock your fitness journey.",
		submit:    "Register",
		busyLabel: "Registering...",
		footer:    "Already have an account? ctrl+r to sign in",
		fields: []formField{
			newField(forms.FieldFirstName, "First Name", "John", false),
			newField(forms.FieldLastName, "Last Name", "Doe", false),
			newField(forms.FieldEmail, "Email", "your@email.com", false),
			newField(forms.FieldPassword, "Password", "*********", true),
			newField(forms.FieldConfirmPassword, "Confirm Password", "*********", true),
		},
	}
}

func (f formModel) signInForm() forms.SignInForm {
	return forms.SignInForm{
		Email:    f.value(forms.FieldEmail),
		Password: f.value(forms.FieldPassword),
	}
}

func (f formModel) registrationForm() forms.RegistrationForm {
	return forms.RegistrationForm{
		FirstName:       f.value(forms.FieldFirstName),
		LastName:        f.value(forms.FieldLastName),
		Email:           f.value(forms.FieldEmail),
		Password:        f.value(forms.FieldPassword),
		ConfirmPassword: f.value(forms.FieldConfirmPassword),
	}
}
