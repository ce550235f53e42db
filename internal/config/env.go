// Package config resolves runtime settings from flags, environment variables
// and the saved profile, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/store"
)

// Env is the environment surface. Empty values mean "not set".
type Env struct {
	APIURL    string        `env:"TRUSTDESK_API_URL"`
	Token     string        `env:"TRUSTDESK_TOKEN"`
	Profile   string        `env:"TRUSTDESK_PROFILE"`
	Format    string        `env:"TRUSTDESK_FORMAT"`
	PerPage   int           `env:"TRUSTDESK_PER_PAGE"`
	Timeout   time.Duration `env:"TRUSTDESK_TIMEOUT" envDefault:"20s"`
	RateLimit float64       `env:"TRUSTDESK_RATE_LIMIT"`
	LogLevel  string        `env:"TRUSTDESK_LOG_LEVEL"`
	LogFile   string        `env:"TRUSTDESK_LOG_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// Flags are the persistent command-line overrides. Empty or zero means
// "not given".
type Flags struct {
	APIURL   string
	Profile  string
	Token    string
	Format   string
	LogLevel string
	PerPage  int
}

type Settings struct {
	Profile   string
	APIURL    string
	Token     string
	Email     string
	Format    string
	PerPage   int
	Timeout   time.Duration
	RateLimit float64
	LogLevel  string
	LogFile   string
}

// Resolve merges flags, env and the saved profile. cfg may be nil.
func Resolve(flags Flags, e Env, cfg *store.GlobalConfig) Settings {
	if cfg == nil {
		cfg = &store.GlobalConfig{}
	}
	profileName := cfg.ActiveProfile(first(flags.Profile, e.Profile))
	p, _ := cfg.Profile(profileName)

	s := Settings{
		Profile:   profileName,
		APIURL:    first(flags.APIURL, e.APIURL, p.APIURL),
		Token:     first(flags.Token, e.Token, p.Token),
		Email:     p.Email,
		Format:    strings.ToLower(first(flags.Format, e.Format, "json")),
		PerPage:   firstInt(flags.PerPage, e.PerPage, p.PerPage),
		Timeout:   e.Timeout,
		RateLimit: e.RateLimit,
		LogLevel:  strings.ToLower(first(flags.LogLevel, e.LogLevel, "info")),
		LogFile:   e.LogFile,
	}
	if s.Timeout <= 0 {
		s.Timeout = api.DefaultTimeout
	}
	if s.RateLimit < 0 {
		s.RateLimit = 0
	}
	return s
}

// ClientConfig turns settings into an api.Config.
func (s Settings) ClientConfig(userAgent string) api.Config {
	return api.Config{
		BaseURL:   s.APIURL,
		Timeout:   s.Timeout,
		RateLimit: s.RateLimit,
		Burst:     1,
		PerPage:   s.PerPage,
		UserAgent: userAgent,
	}
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstInt(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
