package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultProfile = "default"

// GlobalConfig is ~/.trustdesk/config.json.
type GlobalConfig struct {
	CurrentProfile string `json:"currentProfile,omitempty"`

	// Profiles maps a name to one back-office server and its session.
	Profiles map[string]Profile `json:"profiles,omitempty"`

	// TUI holds optional user preferences for the interactive console.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type Profile struct {
	APIURL string `json:"apiUrl,omitempty"`
	Token  string `json:"token,omitempty"`
	// Email is who the token was issued to, for display only.
	Email   string `json:"email,omitempty"`
	PerPage int    `json:"perPage,omitempty"`
}

type TUIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `json:"theme,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.trustdesk).
	if v := strings.TrimSpace(os.Getenv("TRUSTDESK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".trustdesk"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous config around for manual recovery.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o600)
	}

	// The file holds tokens: owner-only.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

func NormalizeProfileName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", errors.New("profile name is empty")
	}
	if strings.ContainsAny(name, `/\ `) {
		return "", errors.New("profile name must not contain spaces or slashes")
	}
	return name, nil
}

// ActiveProfile picks override when set, then the saved current profile,
// then "default".
func (c *GlobalConfig) ActiveProfile(override string) string {
	if name, err := NormalizeProfileName(override); err == nil {
		return name
	}
	if name, err := NormalizeProfileName(c.CurrentProfile); err == nil {
		return name
	}
	return DefaultProfile
}

func (c *GlobalConfig) Profile(name string) (Profile, bool) {
	if c.Profiles == nil {
		return Profile{}, false
	}
	p, ok := c.Profiles[name]
	return p, ok
}

func (c *GlobalConfig) SetProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[name] = p
}

func (c *GlobalConfig) ProfileNames() []string {
	out := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *GlobalConfig) Theme() string {
	if c.TUI == nil || strings.TrimSpace(c.TUI.Theme) == "" {
		return "auto"
	}
	return c.TUI.Theme
}

// SaveSession records a fresh login on a profile, creating it if needed.
func SaveSession(profile, apiURL, token, email string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	p, _ := cfg.Profile(profile)
	if strings.TrimSpace(apiURL) != "" {
		p.APIURL = strings.TrimSpace(apiURL)
	}
	p.Token = token
	p.Email = email
	cfg.SetProfile(profile, p)
	return SaveConfig(cfg)
}

// ClearSession drops the token for a profile. Missing profiles are not an
// error.
func ClearSession(profile string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	p, ok := cfg.Profile(profile)
	if !ok || (p.Token == "" && p.Email == "") {
		return nil
	}
	p.Token = ""
	p.Email = ""
	cfg.SetProfile(profile, p)
	return SaveConfig(cfg)
}
