package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextEntity key.Binding
	PrevEntity key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	FirstPage  key.Binding
	LastPage   key.Binding
	Refresh    key.Binding
	Open       key.Binding
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextEntity: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next entity")),
		PrevEntity: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev entity")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage:   key.NewBinding(key.WithKeys("[", "h", "left"), key.WithHelp("[/h", "prev page")),
		NextPage:   key.NewBinding(key.WithKeys("]", "l", "right"), key.WithHelp("]/l", "next page")),
		FirstPage:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "first page")),
		LastPage:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last page")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextEntity, k.PrevPage, k.NextPage, k.Open, k.New, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextEntity, k.PrevEntity, k.Up, k.Down},
		{k.PrevPage, k.NextPage, k.FirstPage, k.LastPage, k.Refresh},
		{k.Open, k.New, k.Edit, k.Delete},
		{k.Back, k.Help, k.Quit},
	}
}

// readOnly hides the bindings a read-only entity does not support.
func (k keyMap) readOnly(ro bool) keyMap {
	k.New.SetEnabled(!ro)
	k.Edit.SetEnabled(!ro)
	return k
}
