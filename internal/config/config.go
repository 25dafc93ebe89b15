// Package config loads the server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/pelusa-v/tidbid/internal/errors"
)

// ReplyConfig drives the simulated counterparty of one surface.
type ReplyConfig struct {
	TypingDelay time.Duration `yaml:"typing_delay"` // 0 disables the typing stage
	MinDelay    time.Duration `yaml:"min_delay"`    // counted from the typing stage, if any
	MaxDelay    time.Duration `yaml:"max_delay"`
	Responses   []string      `yaml:"responses"`
}

type ServerConfig struct {
	Listen         string        `yaml:"listen"`
	SessionCookie  string        `yaml:"session_cookie"`
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty logs to stderr
}

type ChatConfig struct {
	MaxMessageLength int         `yaml:"max_message_length"`
	Greeting         string      `yaml:"greeting"`
	Admin            ReplyConfig `yaml:"admin"`
	Portal           ReplyConfig `yaml:"portal"`
}

type AuthConfig struct {
	LoginDelay      time.Duration     `yaml:"login_delay"`
	AdminEmail      string            `yaml:"admin_email"`
	AdminPassword   string            `yaml:"admin_password"`
	DemoCredentials map[string]string `yaml:"demo_credentials"`
	RememberDays    int               `yaml:"remember_days"`
}

type LimitsConfig struct {
	MessagesPerSecond float64 `yaml:"messages_per_second"`
	MessageBurst      int     `yaml:"message_burst"`
	LoginsPerMinute   float64 `yaml:"logins_per_minute"`
	LoginBurst        int     `yaml:"login_burst"`
}

type DirectoryConfig struct {
	DSN string `yaml:"dsn"`
}

type LayoutConfig struct {
	MobileBreakpoint int `yaml:"mobile_breakpoint"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config holds the full server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Chat      ChatConfig      `yaml:"chat"`
	Auth      AuthConfig      `yaml:"auth"`
	Limits    LimitsConfig    `yaml:"limits"`
	Directory DirectoryConfig `yaml:"directory"`
	Layout    LayoutConfig    `yaml:"layout"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DefaultConfig returns the demo settings the pages shipped with.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:         "127.0.0.1:3000",
			SessionCookie:  "tidbid_session",
			SessionIdleTTL: 30 * time.Minute,
			SweepInterval:  time.Minute,
		},
		Log: LogConfig{Level: "info"},
		Chat: ChatConfig{
			MaxMessageLength: 500,
			Greeting:         "Hello! How can I help you today?",
			Admin: ReplyConfig{
				MinDelay: time.Second,
				MaxDelay: time.Second,
				Responses: []string{
					"Thanks for your message!",
					"That sounds great!",
					"I'll get back to you on that.",
					"Perfect, let's do it!",
					"Absolutely, I agree.",
				},
			},
			Portal: ReplyConfig{
				TypingDelay: 500 * time.Millisecond,
				MinDelay:    1500 * time.Millisecond,
				MaxDelay:    2500 * time.Millisecond,
				Responses: []string{
					"Thank you for your message! I'll help you with that.",
					"I understand your concern. Let me assist you with this matter.",
					"That's a great question! Here's what I can tell you:",
					"I'm here to help! Could you provide more details about your issue?",
					"Thank you for reaching out. I'll look into this for you.",
					"I appreciate you contacting us. How can I further assist you?",
					"That's something I can definitely help you with.",
					"I see what you're asking about. Let me provide you with the information you need.",
					"Thank you for your patience. I'm here to resolve any issues you might have.",
					"I'm glad you reached out! Let me help you with that right away.",
				},
			},
		},
		Auth: AuthConfig{
			LoginDelay:    1500 * time.Millisecond,
			AdminEmail:    "admin@tidbid.com",
			AdminPassword: "admin123",
			DemoCredentials: map[string]string{
				"demo@tidbid.com":  "password123",
				"test@example.com": "testpass123",
			},
			RememberDays: 30,
		},
		Limits: LimitsConfig{
			MessagesPerSecond: 2,
			MessageBurst:      5,
			LoginsPerMinute:   10,
			LoginBurst:        5,
		},
		Directory: DirectoryConfig{DSN: ":memory:"},
		Layout:    LayoutConfig{MobileBreakpoint: 768},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigLoadFailed(path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.ConfigLoadFailed(path, fmt.Errorf("parse config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return apperrors.ConfigInvalid("server.listen is required")
	}
	if c.Server.SessionCookie == "" {
		return apperrors.ConfigInvalid("server.session_cookie is required")
	}
	if c.Layout.MobileBreakpoint <= 0 {
		return apperrors.ConfigInvalid("layout.mobile_breakpoint must be positive")
	}
	if c.Chat.MaxMessageLength <= 0 {
		return apperrors.ConfigInvalid("chat.max_message_length must be positive")
	}
	for name, rc := range map[string]ReplyConfig{"admin": c.Chat.Admin, "portal": c.Chat.Portal} {
		if len(rc.Responses) == 0 {
			return apperrors.ConfigInvalid(fmt.Sprintf("chat.%s.responses must not be empty", name))
		}
		if rc.MinDelay < 0 || rc.MaxDelay < rc.MinDelay {
			return apperrors.ConfigInvalid(fmt.Sprintf("chat.%s delay window is inverted", name))
		}
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
