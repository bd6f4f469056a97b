package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"TrendSentinel/internal/model"
)

// SeriesConfig describes one series to analyze. Codes are tried in order.
// LookbackYears overrides the source default when set. Anywhere a lookback is
// configured, 0 requests all available history.
type SeriesConfig struct {
	Name          string `yaml:"name" validate:"required"`
	Codes         []int  `yaml:"codes" validate:"required,min=1,dive,gt=0"`
	LookbackYears *int   `yaml:"lookback_years" validate:"omitempty,gte=0"`
}

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL       string         `yaml:"base_url" validate:"required,url"`
		Format        string         `yaml:"format" validate:"oneof=csv json"`
		Timeout       time.Duration  `yaml:"timeout" validate:"gte=1s,lte=60s"`
		Interval      *time.Duration `yaml:"interval" validate:"omitempty,gte=0"`
		LookbackYears *int           `yaml:"lookback_years" validate:"omitempty,gte=0"`
	} `yaml:"source"`
	Analysis struct {
		MinSamples int `yaml:"min_samples" validate:"gte=2"`
	} `yaml:"analysis"`
	Series []SeriesConfig `yaml:"series" validate:"required,min=1,unique=Name,dive"`
	Output struct {
		Charts   bool   `yaml:"charts"`
		ChartDir string `yaml:"chart_dir"`
		Color    string `yaml:"color" validate:"oneof=auto always never"`
	} `yaml:"output"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultSeries is the reference set: household debt, SELIC (with alternates),
// IPCA, monthly GDP and the USD/BRL exchange rate.
func DefaultSeries() []SeriesConfig {
	return []SeriesConfig{
		{Name: "Endividamento das Famílias com SFN", Codes: []int{29037}},
		{Name: "Taxa SELIC", Codes: []int{11, 1178, 4189}},
		{Name: "IPCA - Variação Mensal", Codes: []int{433}},
		{Name: "PIB Mensal", Codes: []int{4380}},
		{Name: "Taxa de Câmbio R$/US$", Codes: []int{1}},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Output.Charts = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BCB_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("BCB_FORMAT"); v != "" {
		c.Source.Format = v
	}
	if v := os.Getenv("BCB_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BCB_TIMEOUT: %w", err)
		}
		c.Source.Timeout = d
	}
	if v := os.Getenv("LOOKBACK_YEARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOOKBACK_YEARS: %w", err)
		}
		c.Source.LookbackYears = &n
	}
	if v := os.Getenv("MIN_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MIN_SAMPLES: %w", err)
		}
		c.Analysis.MinSamples = n
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CHART_DIR"); v != "" {
		c.Output.ChartDir = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = "https://api.bcb.gov.br"
	}
	if c.Source.Format == "" {
		c.Source.Format = string(model.FormatCSV)
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if c.Source.Interval == nil {
		interval := 500 * time.Millisecond
		c.Source.Interval = &interval
	}
	if c.Source.LookbackYears == nil {
		years := 10
		c.Source.LookbackYears = &years
	}
	if c.Analysis.MinSamples == 0 {
		c.Analysis.MinSamples = 2
	}
	if len(c.Series) == 0 {
		c.Series = DefaultSeries()
	}
	if c.Output.ChartDir == "" {
		c.Output.ChartDir = "."
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 9 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether summary delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// RequestInterval is the pacing between API requests; 0 disables pacing.
func (c *Config) RequestInterval() time.Duration {
	if c.Source.Interval == nil {
		return 0
	}
	return *c.Source.Interval
}

// Requests builds the series requests for a run starting at now.
func (c *Config) Requests(now time.Time) ([]model.SeriesRequest, error) {
	reqs := make([]model.SeriesRequest, 0, len(c.Series))
	for _, s := range c.Series {
		var years int
		if c.Source.LookbackYears != nil {
			years = *c.Source.LookbackYears
		}
		if s.LookbackYears != nil {
			years = *s.LookbackYears
		}
		req, err := model.NewSeriesRequest(s.Name, model.LastYears(years, now), s.Codes...)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
