package tui

import (
	"errors"
	"fmt"
	"strings"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/entities"
	"trustdesk-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formModel is the create/edit modal. Inputs map 1:1 onto the entity's
// descriptor fields.
type formModel struct {
	create bool
	id     int64
	title  string

	fields []entities.Field
	inputs []textinput.Model
	focus  int

	err        string
	fieldErrs  map[string]string
	submitting bool
}

func newForm(title string, create bool, id int64, fields []entities.Field, values map[string]string) formModel {
	f := formModel{
		create: create,
		id:     id,
		title:  title,
		fields: fields,
		inputs: make([]textinput.Model, len(fields)),
	}
	for i, fd := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 2048
		in.Placeholder = placeholder(fd)
		in.SetValue(values[fd.Key])
		if fd.Key == "password" {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs[i] = in
	}
	f.setFocus(0)
	return f
}

func placeholder(fd entities.Field) string {
	switch {
	case fd.Help != "":
		return fd.Help
	case len(fd.Options) > 0:
		return "one of: " + strings.Join(fd.Options, ", ")
	case fd.File && fd.Multi:
		return "file paths, comma separated"
	case fd.File:
		return "file path"
	case fd.Multi:
		return "comma separated"
	}
	return ""
}

func (f *formModel) setFocus(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	i = (i%len(f.inputs) + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.focus = i
	return f.inputs[i].Focus()
}

// values returns the raw input text keyed by field.
func (f formModel) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, fd := range f.fields {
		out[fd.Key] = f.inputs[i].Value()
	}
	return out
}

// setError shows err on the form. Field-level problems go next to their
// inputs; anything else goes to the footer.
func (f *formModel) setError(err error) {
	f.err = ""
	f.fieldErrs = map[string]string{}

	var in *model.InputError
	if errors.As(err, &in) {
		for _, fe := range in.Fields {
			f.fieldErrs[fe.Field] = fe.Message
		}
		f.err = "fix the highlighted fields"
		return
	}
	if e := api.Classify(err); e.Kind == api.KindValidation && len(e.Fields) > 0 {
		for k, msgs := range e.Fields {
			f.fieldErrs[k] = strings.Join(msgs, "; ")
		}
		f.err = e.Message
		return
	}
	f.err = api.Message(err)
}

// update routes keys the app did not claim to the focused input.
func (f formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	if len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f formModel) view(width int) string {
	bodyW := modalBodyWidth(width)
	var b strings.Builder
	for i, fd := range f.fields {
		focused := i == f.focus
		b.WriteString(renderLabel(fd.Label, fd.Required, focused))
		b.WriteString("\n")
		b.WriteString(renderInputLine(bodyW, f.inputs[i].View()))
		b.WriteString("\n")
		if msg := f.fieldErrs[fd.Key]; msg != "" {
			b.WriteString(styleError().Width(bodyW).Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(styleMuted().Render("saving…"))
	case f.err != "":
		b.WriteString(styleError().Width(bodyW).Render(f.err))
	default:
		b.WriteString(styleMuted().Width(bodyW).Render("tab/↑↓: field   ctrl+s: save   esc: cancel"))
	}

	title := f.title
	if !f.create {
		title = fmt.Sprintf("%s #%d", f.title, f.id)
	}
	return renderModalBox(width, title, lipgloss.NewStyle().Width(bodyW).Render(b.String()))
}
