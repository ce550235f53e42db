package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("TRUSTDESK_CONFIG_DIR", cfgDir)

	seed := &GlobalConfig{
		CurrentProfile: "seed",
		Profiles:       map[string]Profile{"seed": {APIURL: "https://seed.example.com/api"}},
	}
	if err := SaveConfig(seed); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 32
	errCh := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			cfg, err := LoadConfig()
			if err != nil {
				errCh <- err
				return
			}
			cfg.SetProfile(fmt.Sprintf("p-%d", i), Profile{APIURL: fmt.Sprintf("https://p%d.example.com", i)})
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(cfgDir, "config.json"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var got GlobalConfig
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("config.json is not valid JSON after concurrent writes: %v\n%s", err, b)
	}

	ents, err := os.ReadDir(cfgDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}
}

func TestSaveConfig_IsOwnerOnly(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("TRUSTDESK_CONFIG_DIR", cfgDir)

	if err := SaveConfig(&GlobalConfig{}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	info, err := os.Stat(filepath.Join(cfgDir, "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600; got %o", perm)
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Setenv("TRUSTDESK_CONFIG_DIR", t.TempDir())

	if err := ClearSession("nobody"); err != nil {
		t.Fatalf("ClearSession on missing profile: %v", err)
	}
	if err := SaveSession("work", "https://desk.example.com/api", "tok-1", "ann@example.com"); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	p, ok := cfg.Profile("work")
	if !ok || p.Token != "tok-1" || p.APIURL != "https://desk.example.com/api" || p.Email != "ann@example.com" {
		t.Fatalf("unexpected profile: %+v (ok=%v)", p, ok)
	}

	// A later login without a URL keeps the saved one.
	if err := SaveSession("work", "", "tok-2", "ann@example.com"); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := ClearSession("work"); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	cfg, _ = LoadConfig()
	p, _ = cfg.Profile("work")
	if p.Token != "" || p.Email != "" || p.APIURL != "https://desk.example.com/api" {
		t.Fatalf("unexpected profile after logout: %+v", p)
	}
}

func TestActiveProfile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current, override, want string
	}{
		{"", "", DefaultProfile},
		{"Work", "", "work"},
		{"work", " Staging ", "staging"},
		{"work", "bad name", "work"},
	}
	for _, tc := range cases {
		cfg := &GlobalConfig{CurrentProfile: tc.current}
		if got := cfg.ActiveProfile(tc.override); got != tc.want {
			t.Fatalf("ActiveProfile(%q) with current %q = %q; want %q", tc.override, tc.current, got, tc.want)
		}
	}
}

func TestThemeDefaultsToAuto(t *testing.T) {
	t.Parallel()

	if got := (&GlobalConfig{}).Theme(); got != "auto" {
		t.Fatalf("got %q", got)
	}
	if got := (&GlobalConfig{TUI: &TUIConfig{Theme: "light"}}).Theme(); got != "light" {
		t.Fatalf("got %q", got)
	}
}
