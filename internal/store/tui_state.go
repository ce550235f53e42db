package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const tuiStateFileName = "tui_state.json"

// TUIState lets the console reopen on the last entity and page. It is best
// effort: callers tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	// Entity is the entity name of the last open screen.
	Entity string `json:"entity,omitempty"`

	// Pages is the last page number viewed per entity.
	Pages map[string]int `json:"pages,omitempty"`
}

func tuiStatePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tuiStateFileName), nil
}

func LoadTUIState() (*TUIState, error) {
	path, err := tuiStatePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupt state reads as empty.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func SaveTUIState(st *TUIState) error {
	if st == nil {
		return nil
	}
	path, err := tuiStatePath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "tui_state.json.*.tmp", path, b, 0o644)
}

// Page returns the remembered page for entity, or 1.
func (st *TUIState) Page(entity string) int {
	if st == nil || st.Pages[entity] < 1 {
		return 1
	}
	return st.Pages[entity]
}

func (st *TUIState) SetPage(entity string, page int) {
	if st.Pages == nil {
		st.Pages = map[string]int{}
	}
	st.Pages[entity] = page
}
