// Package config defines the process configuration surface. A Config is
// resolved once at startup and handed to each component at construction;
// components never reach for globals or re-read the environment.
package config

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address for webhooks, tracking and metrics.
	Addr string `koanf:"addr"`

	DatabaseURL string `koanf:"database_url"`

	// AMQPURL enables the engagement-event queue. Empty means events are
	// ingested synchronously by the HTTP handlers.
	AMQPURL string `koanf:"amqp_url"`

	// TrackingBaseURL is the public base for open pixels and click links,
	// e.g. "https://t.example.com".
	TrackingBaseURL string `koanf:"tracking_base_url"`

	ReportDir string `koanf:"report_dir"`

	SMTP         SMTP         `koanf:"smtp"`
	SendGrid     SendGrid     `koanf:"sendgrid"`
	Mailgun      Mailgun      `koanf:"mailgun"`
	LinkedIn     LinkedIn     `koanf:"linkedin"`
	Twilio       Twilio       `koanf:"twilio"`
	Discovery    Discovery    `koanf:"discovery"`
	Scoring      Scoring      `koanf:"scoring"`
	Composer     Composer     `koanf:"composer"`
	Dispatcher   Dispatcher   `koanf:"dispatcher"`
	Tracking     Tracking     `koanf:"tracking"`
	Optimization Optimization `koanf:"optimization"`
}

type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

type SendGrid struct {
	APIKey string `koanf:"api_key"`
	From   string `koanf:"from"`
}

type Mailgun struct {
	APIKey string `koanf:"api_key"`
	Domain string `koanf:"domain"`
	From   string `koanf:"from"`
}

type LinkedIn struct {
	AccessToken string `koanf:"access_token"`
}

type Twilio struct {
	AccountSID string `koanf:"account_sid"`
	AuthToken  string `koanf:"auth_token"`
	FromNumber string `koanf:"from_number"`
}

type Discovery struct {
	Enabled bool `koanf:"enabled"`

	// Schedule is "daily" or "hourly". Daily runs fire at Time (HH:MM).
	Schedule string `koanf:"schedule"`
	Time     string `koanf:"time"`

	Industries    []string `koanf:"industries"`
	Locations     []string `koanf:"locations"`
	LeadsPerQuery int      `koanf:"leads_per_query"`
}

type Scoring struct {
	Enabled         bool `koanf:"enabled"`
	IntervalMinutes int  `koanf:"interval_minutes"`

	// MinScoreThreshold gates which leads enter composition.
	MinScoreThreshold int `koanf:"min_score_threshold"`
}

type Composer struct {
	Enabled         bool     `koanf:"enabled"`
	IntervalMinutes int      `koanf:"interval_minutes"`
	Campaigns       []string `koanf:"campaigns"`

	// PersonalizationThreshold is the minimum personalization score a lead
	// must support before a message is drafted for it. Lowered at runtime by
	// the optimization pass when open rates fall.
	PersonalizationThreshold int `koanf:"personalization_threshold"`

	BatchSize int `koanf:"batch_size"`
}

type Dispatcher struct {
	Enabled         bool `koanf:"enabled"`
	IntervalMinutes int  `koanf:"interval_minutes"`

	DailyLimit  int `koanf:"daily_limit"`
	HourlyLimit int `koanf:"hourly_limit"`

	// SendDelaySeconds is the mean pacing delay between consecutive sends;
	// the actual delay is jittered in [0.5d, 1.5d].
	SendDelaySeconds int `koanf:"send_delay_seconds"`

	TransportTimeoutSeconds int `koanf:"transport_timeout_seconds"`
	BatchSize               int `koanf:"batch_size"`
}

type Tracking struct {
	Enabled                  bool   `koanf:"enabled"`
	AggregateIntervalMinutes int    `koanf:"aggregate_interval_minutes"`
	ReportTime               string `koanf:"report_time"`
	ReportDays               int    `koanf:"report_days"`
}

type Optimization struct {
	Enabled bool   `koanf:"enabled"`
	Time    string `koanf:"time"`

	// OpenRateFloor is the percentage below which subject lines are flagged
	// and the personalization threshold is lowered.
	OpenRateFloor  float64 `koanf:"open_rate_floor"`
	ClickRateFloor float64 `koanf:"click_rate_floor"`
	ReplyRateFloor float64 `koanf:"reply_rate_floor"`
}

// Default returns the built-in configuration, before file and env layering.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		TrackingBaseURL: "http://localhost:8080",
		ReportDir:       "reports",
		SMTP: SMTP{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Discovery: Discovery{
			Enabled:  true,
			Schedule: "daily",
			Time:     "09:00",
			Industries: []string{
				"artificial intelligence",
				"software development",
				"digital marketing",
				"e-commerce",
				"fintech",
				"healthcare technology",
				"cybersecurity",
				"cloud computing",
			},
			Locations:     []string{"", "United States", "California"},
			LeadsPerQuery: 25,
		},
		Scoring: Scoring{
			Enabled:           true,
			IntervalMinutes:   30,
			MinScoreThreshold: 200,
		},
		Composer: Composer{
			Enabled:                  true,
			IntervalMinutes:          15,
			Campaigns:                []string{"general", "automation", "growth"},
			PersonalizationThreshold: 70,
			BatchSize:                25,
		},
		Dispatcher: Dispatcher{
			Enabled:                 true,
			IntervalMinutes:         60,
			DailyLimit:              50,
			HourlyLimit:             10,
			SendDelaySeconds:        30,
			TransportTimeoutSeconds: 30,
			BatchSize:               10,
		},
		Tracking: Tracking{
			Enabled:                  true,
			AggregateIntervalMinutes: 10,
			ReportTime:               "18:00",
			ReportDays:               7,
		},
		Optimization: Optimization{
			Enabled:        true,
			Time:           "23:00",
			OpenRateFloor:  15.0,
			ClickRateFloor: 3.0,
			ReplyRateFloor: 2.0,
		},
	}
}
