package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Env     string `mapstructure:"env" json:"env"`
	ApiPort string `mapstructure:"api_port" json:"api_port"`

	Database    string `mapstructure:"database" json:"database"` // "sqlite3" ou "postgres"
	DbHost      string `mapstructure:"db_host" json:"db_host"`
	DbPort      string `mapstructure:"db_port" json:"db_port"`
	DbUser      string `mapstructure:"db_user" json:"db_user"`
	DbName      string `mapstructure:"db_name" json:"db_name"`
	DbPass      string `mapstructure:"db_pass" json:"db_pass"`
	DbPath      string `mapstructure:"db_path" json:"db_path"`
	AutoMigrate bool   `mapstructure:"auto_migrate" json:"auto_migrate"`

	Security struct {
		JwtSecret             string `mapstructure:"jwt_secret" json:"jwt_secret"`
		AccessTokenTTLMinutes int    `mapstructure:"access_token_ttl_minutes" json:"access_token_ttl_minutes"`
		ActivationCodeLen     int    `mapstructure:"activation_code_len" json:"activation_code_len"`
		RefreshCodeLen        int    `mapstructure:"refresh_code_len" json:"refresh_code_len"`
		RefreshCodeMaxValid   int    `mapstructure:"refresh_code_max_valid_days" json:"refresh_code_max_valid_days"`
		RequireActivation     bool   `mapstructure:"require_activation" json:"require_activation"`
	} `mapstructure:"security" json:"security"`

	Payments struct {
		WebhookSecret   string `mapstructure:"webhook_secret" json:"webhook_secret"`
		DefaultCurrency string `mapstructure:"default_currency" json:"default_currency"`
	} `mapstructure:"payments" json:"payments"`

	Loyalty struct {
		ReferrerPoints int64 `mapstructure:"referrer_points" json:"referrer_points"`
		ReferredPoints int64 `mapstructure:"referred_points" json:"referred_points"`
		TicketPoints   int64 `mapstructure:"ticket_points" json:"ticket_points"`
	} `mapstructure:"loyalty" json:"loyalty"`

	Fantasy struct {
		Budget     int64 `mapstructure:"budget" json:"budget"`
		SquadSize  int   `mapstructure:"squad_size" json:"squad_size"`
		MaxPerClub int   `mapstructure:"max_per_club" json:"max_per_club"`
	} `mapstructure:"fantasy" json:"fantasy"`

	AI struct {
		OpenAIKey       string `mapstructure:"openai_key" json:"openai_key"`
		Model           string `mapstructure:"model" json:"model"`
		BaseURL         string `mapstructure:"base_url" json:"base_url"`
		CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" json:"cache_ttl_minutes"`
	} `mapstructure:"ai" json:"ai"`

	Redis struct {
		Addr     string `mapstructure:"addr" json:"addr"`
		Password string `mapstructure:"password" json:"password"`
		DB       int    `mapstructure:"db" json:"db"`
	} `mapstructure:"redis" json:"redis"`

	Amqp struct {
		URL      string `mapstructure:"url" json:"url"`
		Exchange string `mapstructure:"exchange" json:"exchange"`
	} `mapstructure:"amqp" json:"amqp"`

	Sentry struct {
		DSN string `mapstructure:"dsn" json:"dsn"`
	} `mapstructure:"sentry" json:"sentry"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled" json:"enabled"`
	} `mapstructure:"metrics" json:"metrics"`

	Jobs struct {
		ExpireSubscriptionsSchedule string `mapstructure:"expire_subscriptions_schedule" json:"expire_subscriptions_schedule"`
		DispatchIntervalSeconds     int    `mapstructure:"dispatch_interval_seconds" json:"dispatch_interval_seconds"`
	} `mapstructure:"jobs" json:"jobs"`
}

var defaults = map[string]any{
	"env":                                  "dev",
	"api_port":                             "8080",
	"database":                             "sqlite3",
	"db_path":                              "db/fanhub.db",
	"auto_migrate":                         false,
	"security.jwt_secret":                  "CHANGE_ME",
	"security.access_token_ttl_minutes":    24 * 60,
	"security.activation_code_len":         6,
	"security.refresh_code_len":            32,
	"security.refresh_code_max_valid_days": 30,
	"security.require_activation":          false,
	"payments.webhook_secret":              "",
	"payments.default_currency":            "EUR",
	"loyalty.referrer_points":              100,
	"loyalty.referred_points":              50,
	"loyalty.ticket_points":                10,
	"fantasy.budget":                       1000,
	"fantasy.squad_size":                   11,
	"fantasy.max_per_club":                 3,
	"ai.openai_key":                        "",
	"ai.model":                             "gpt-4.1-mini",
	"ai.base_url":                          "https://api.openai.com/v1",
	"ai.cache_ttl_minutes":                 30,
	"redis.addr":                           "",
	"redis.password":                       "",
	"redis.db":                             0,
	"amqp.url":                             "",
	"amqp.exchange":                        "notifications",
	"sentry.dsn":                           "",
	"metrics.enabled":                      true,
	"jobs.expire_subscriptions_schedule":   "@every 10m",
	"jobs.dispatch_interval_seconds":       5,
}

// Get reads the JSON config at path (optional) and lets FANHUB_* environment
// variables override any key, e.g. FANHUB_SECURITY_JWT_SECRET.
func Get(path string) (Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("FANHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Configuration{}, err
		}
	}

	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return Configuration{}, err
	}
	c.normalize()
	return c, nil
}

// Default returns the configuration built only from defaults (no file, no env).
func Default() Configuration {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	var c Configuration
	_ = v.Unmarshal(&c)
	c.normalize()
	return c
}

// normalize keeps zero values from a partial file from disabling features.
func (c *Configuration) normalize() {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Security.JwtSecret == "" {
		c.Security.JwtSecret = "CHANGE_ME"
	}
	if c.Security.AccessTokenTTLMinutes <= 0 {
		c.Security.AccessTokenTTLMinutes = 24 * 60
	}
	if c.Security.ActivationCodeLen <= 0 {
		c.Security.ActivationCodeLen = 6
	}
	if c.Security.RefreshCodeLen <= 0 {
		c.Security.RefreshCodeLen = 32
	}
	if c.Security.RefreshCodeMaxValid <= 0 {
		c.Security.RefreshCodeMaxValid = 30
	}
	if c.Payments.DefaultCurrency == "" {
		c.Payments.DefaultCurrency = "EUR"
	}
	c.Payments.DefaultCurrency = strings.ToUpper(c.Payments.DefaultCurrency)
	if c.Fantasy.Budget <= 0 {
		c.Fantasy.Budget = 1000
	}
	if c.Fantasy.SquadSize <= 0 {
		c.Fantasy.SquadSize = 11
	}
	if c.Fantasy.MaxPerClub <= 0 {
		c.Fantasy.MaxPerClub = 3
	}
	if c.AI.CacheTTLMinutes <= 0 {
		c.AI.CacheTTLMinutes = 30
	}
	if c.Amqp.Exchange == "" {
		c.Amqp.Exchange = "notifications"
	}
	if c.Jobs.ExpireSubscriptionsSchedule == "" {
		c.Jobs.ExpireSubscriptionsSchedule = "@every 10m"
	}
	if c.Jobs.DispatchIntervalSeconds <= 0 {
		c.Jobs.DispatchIntervalSeconds = 5
	}
}
