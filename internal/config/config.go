// Package config loads the relay settings from a TOML file and RELAY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chxlky/webhook-relay/integrations"
	"github.com/chxlky/webhook-relay/internal/mailrelay"
	"github.com/chxlky/webhook-relay/internal/relocator"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Trello TrelloConfig `mapstructure:"trello"`
	Mail   MailConfig   `mapstructure:"mail"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type TrelloConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	APIToken        string        `mapstructure:"api_token"`
	Board           string        `mapstructure:"board"`
	List            string        `mapstructure:"list"`
	ListName        string        `mapstructure:"list_name"`
	User            string        `mapstructure:"user"`
	MatchAttachment bool          `mapstructure:"match_attachment"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type MailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	To           string `mapstructure:"to"`
	Subject      string `mapstructure:"subject"`
}

// Relocator converts the Trello section into the relocator's validated shape.
func (t TrelloConfig) Relocator() relocator.Config {
	return relocator.Config{
		APIKey:          t.APIKey,
		APIToken:        t.APIToken,
		BoardID:         t.Board,
		List:            relocator.NewListTarget(t.List, t.ListName),
		User:            t.User,
		MatchAttachment: t.MatchAttachment,
		Timeout:         t.Timeout,
	}
}

func (m MailConfig) Relay() mailrelay.Config {
	return mailrelay.Config{From: m.From, Subject: m.Subject}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("trello.base_url", integrations.DefaultTrelloURL)
	v.SetDefault("trello.timeout", 30*time.Second)
	v.SetDefault("mail.subject", mailrelay.DefaultSubject)
	// Search also returns cards that only mention the pull request path.
	v.SetDefault("trello.match_attachment", true)

	// Bare keys so AutomaticEnv can see values that only come from the environment.
	for _, key := range []string{
		"trello.api_key", "trello.api_token", "trello.board", "trello.list",
		"trello.list_name", "trello.user",
		"mail.resend_api_key", "mail.from", "mail.to",
	} {
		v.SetDefault(key, "")
	}
}

// Load reads the config file at path, or "config.toml" from the working
// directory when path is empty. A missing file is not an error; the
// environment and defaults still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// WithOverrides applies the non-secret per-request parameters (trello_board,
// trello_list, trello_list_name, user, match_attachment) on top of t.
// Credentials are never taken from a request.
func (t TrelloConfig) WithOverrides(get func(key string) (string, bool)) (TrelloConfig, error) {
	if v, ok := get("trello_board"); ok {
		t.Board = v
	}
	listID, hasID := get("trello_list")
	if hasID {
		t.List = listID
	}
	if v, ok := get("trello_list_name"); ok {
		t.ListName = v
		// A name given on the request targets that list, not the configured id.
		if !hasID {
			t.List = ""
		}
	}
	if v, ok := get("user"); ok {
		t.User = v
	}
	if v, ok := get("match_attachment"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return t, fmt.Errorf("invalid match_attachment %q: %w", v, err)
		}
		t.MatchAttachment = b
	}
	return t, nil
}
