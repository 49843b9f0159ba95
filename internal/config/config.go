package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Europe/Paris"
	configPathEnv   = "VEILLE_CONFIG"

	newsAPIKeyEnv     = "NEWSAPI_KEY"
	newsAPILimitEnv   = "NEWSAPI_LIMIT"
	llmProviderEnv    = "LLM_PROVIDER"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	scheduleTimeEnv   = "SCHEDULE_TIME"
	timezoneEnv       = "TIMEZONE"
	databaseDSNEnv    = "DATABASE_DSN"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	News          NewsConfig         `yaml:"news"`
	LLM           LLMConfig          `yaml:"llm"`
	Notifications NotificationConfig `yaml:"notifications"`
	History       HistoryConfig      `yaml:"history"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ServerConfig describes the HTTP control surface.
type ServerConfig struct {
	Address     string `yaml:"address"`
	FrontendURL string `yaml:"frontendUrl"`
}

// SchedulerConfig defines when the daily pipeline should run.
type SchedulerConfig struct {
	Time     string         `yaml:"time"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// HourMinute parses the configured HH:MM schedule time.
func (s SchedulerConfig) HourMinute() (int, int) {
	t, err := time.Parse("15:04", s.Time)
	if err != nil {
		return 9, 0
	}
	return t.Hour(), t.Minute()
}

// NewsConfig groups settings for article sources.
type NewsConfig struct {
	APIToken string         `yaml:"apiToken"`
	Limit    int            `yaml:"limit"`
	Days     int            `yaml:"days"`
	Keywords []string       `yaml:"keywords"`
	Sources  []SourceConfig `yaml:"sources"`
}

// SourceConfig describes a single article source with its provider
// strategy (e.g. "thenewsapi" or "rss").
type SourceConfig struct {
	Name     string            `yaml:"name"`
	Provider string            `yaml:"provider"`
	Feeds    []string          `yaml:"feeds"`
	Options  map[string]string `yaml:"options"`
}

// LLMConfig defines which model backend to use and how to contact it.
type LLMConfig struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	GeminiAPIKey    string `yaml:"geminiApiKey"`
	OpenAIAPIKey    string `yaml:"openaiApiKey"`
	AnthropicAPIKey string `yaml:"anthropicApiKey"`
	MaxRetries      int    `yaml:"maxRetries"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds"`
}

// Timeout returns the per-call ceiling for backend requests.
func (l LLMConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// HistoryConfig selects where run history is persisted. When DSN is
// set the Postgres store is used, otherwise the JSON file.
type HistoryConfig struct {
	File string `yaml:"file"`
	DSN  string `yaml:"dsn"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.News.Sources) == 0 {
		cfg.News.Sources = defaultConfig().News.Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.APIToken = v
	}
	if v := os.Getenv(newsAPILimitEnv); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			c.News.Limit = limit
		}
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.LLM.GeminiAPIKey = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv(anthropicKeyEnv); v != "" {
		c.LLM.AnthropicAPIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(scheduleTimeEnv); v != "" {
		c.Scheduler.Time = v
	}
	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.History.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Server.Address != "" {
		base.Server.Address = override.Server.Address
	}
	if override.Server.FrontendURL != "" {
		base.Server.FrontendURL = override.Server.FrontendURL
	}

	if override.Scheduler.Time != "" {
		base.Scheduler.Time = override.Scheduler.Time
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.News.APIToken != "" {
		base.News.APIToken = override.News.APIToken
	}
	if override.News.Limit > 0 {
		base.News.Limit = override.News.Limit
	}
	if override.News.Days > 0 {
		base.News.Days = override.News.Days
	}
	if len(override.News.Keywords) > 0 {
		base.News.Keywords = override.News.Keywords
	}
	if len(override.News.Sources) > 0 {
		base.News.Sources = override.News.Sources
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.GeminiAPIKey != "" {
		base.LLM.GeminiAPIKey = override.LLM.GeminiAPIKey
	}
	if override.LLM.OpenAIAPIKey != "" {
		base.LLM.OpenAIAPIKey = override.LLM.OpenAIAPIKey
	}
	if override.LLM.AnthropicAPIKey != "" {
		base.LLM.AnthropicAPIKey = override.LLM.AnthropicAPIKey
	}
	if override.LLM.MaxRetries > 0 {
		base.LLM.MaxRetries = override.LLM.MaxRetries
	}
	if override.LLM.TimeoutSeconds > 0 {
		base.LLM.TimeoutSeconds = override.LLM.TimeoutSeconds
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.History.File != "" {
		base.History.File = override.History.File
	}
	if override.History.DSN != "" {
		base.History.DSN = override.History.DSN
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Server:    ServerConfig{Address: ":8080"},
		Scheduler: SchedulerConfig{Time: "09:00", Timezone: defaultTimezone, location: tz},
		News: NewsConfig{
			Limit: 20,
			Days:  7,
			Keywords: []string{
				"AI", "LLM", "GPT", "Claude", "Gemini", "AI agents", "large language model",
			},
			Sources: []SourceConfig{
				{Name: "thenewsapi", Provider: "thenewsapi"},
			},
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			Model:          "gemini-2.5-flash",
			MaxRetries:     3,
			TimeoutSeconds: 30,
		},
		History: HistoryConfig{File: "execution_history.json"},
		Logging: LoggingConfig{Level: "info"},
	}
}
