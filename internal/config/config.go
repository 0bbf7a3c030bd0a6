// Package config loads the bot's settings file and credentials.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the YAML configuration. Credentials are deliberately not
// here; they come from the environment only.
type Settings struct {
	Subreddit     string `yaml:"subreddit"`
	TestSubreddit string `yaml:"test_subreddit"`

	// MaxSubmissions is how many hot posts are examined per run, and
	// also the capacity of both recency caches.
	MaxSubmissions int `yaml:"max_submissions"`

	UserAgent string `yaml:"user_agent"`

	DigestRecipient     string `yaml:"digest_recipient"`
	TestDigestRecipient string `yaml:"test_digest_recipient"`

	Flair struct {
		Label    string `yaml:"label"`
		CSSClass string `yaml:"css_class"`
	} `yaml:"flair"`

	Caches struct {
		NeedsReviewFile    string `yaml:"needs_review_file"`
		AlreadyExpiredFile string `yaml:"already_expired_file"`
	} `yaml:"caches"`

	ReportFile    string `yaml:"report_file"`
	DashboardPort string `yaml:"dashboard_port"`
}

// Default returns the settings the bot runs with when no file is given.
func Default() *Settings {
	s := &Settings{
		Subreddit:           "freeebooks",
		TestSubreddit:       "chtorrr",
		MaxSubmissions:      200,
		UserAgent:           "/r/FreeEbooks expired-link-marking bot v2.1",
		DigestRecipient:     "/r/FreeEbooks",
		TestDigestRecipient: "penguinland",
		ReportFile:          "data/runs.ndjson",
		DashboardPort:       "8080",
	}
	s.Flair.Label = "Expired"
	s.Flair.CSSClass = "closed"
	s.Caches.NeedsReviewFile = "needs_review_cache.txt"
	s.Caches.AlreadyExpiredFile = "already_expired_cache.txt"
	return s
}

// Load reads settings from path on top of the defaults. A missing file
// just means defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings YAML: %w", err)
	}

	if s.MaxSubmissions < 1 {
		slog.Warn("max_submissions out of range, using default", "got", s.MaxSubmissions, "default", 200)
		s.MaxSubmissions = 200
	}
	return s, nil
}

// Credentials holds the forum login material, environment-only.
type Credentials struct {
	Mode     string // api, public, or mock
	ID       string
	Secret   string
	Username string
	Password string
}

// CredentialsFromEnv reads the credential environment variables. Call
// godotenv.Load first if a .env file should be honored.
func CredentialsFromEnv() Credentials {
	mode := os.Getenv("BOT_MODE")
	if mode == "" {
		mode = "api"
	}
	return Credentials{
		Mode:     mode,
		ID:       os.Getenv("REDDIT_CLIENT_ID"),
		Secret:   os.Getenv("REDDIT_CLIENT_SECRET"),
		Username: os.Getenv("REDDIT_USERNAME"),
		Password: os.Getenv("REDDIT_PASSWORD"),
	}
}
