package config

import (
	"time"

	"github.com/myrontuttle/storytime/internal/core"
)

type Limits struct {
	RateLimit         RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_" validate:"required"`
	MaxRetries        int             `yaml:"max_retries" env:"MAX_RETRIES" validate:"min=0,max=10"`
	BaseDelay         time.Duration   `yaml:"base_delay" env:"BASE_DELAY" validate:"required,min=10ms,max=1m"`
	MaxDelay          time.Duration   `yaml:"max_delay" env:"MAX_DELAY" validate:"required,gtefield=BaseDelay,max=10m"`
	BackoffMultiplier float64         `yaml:"backoff_multiplier" env:"BACKOFF_MULTIPLIER" validate:"required,min=1,max=10"`
	Workers           int             `yaml:"workers" env:"WORKERS" validate:"required,min=1,max=32"`
	ScenesPerAct      int             `yaml:"scenes_per_act" env:"SCENES_PER_ACT" validate:"required,min=2,max=20,even"`
	MaxTertiary       int             `yaml:"max_tertiary" env:"MAX_TERTIARY" validate:"min=0,max=10"`
	TotalTimeout      time.Duration   `yaml:"total_timeout" env:"TOTAL_TIMEOUT" validate:"required,min=1m,max=24h"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" env:"BURST_SIZE" validate:"required,min=1,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         1,
		},
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2,
		Workers:           1,
		ScenesPerAct:      2,
		MaxTertiary:       3,
		TotalTimeout:      2 * time.Hour,
	}
}

// RetryPolicy converts the backoff limits for the resilience helpers.
func (l Limits) RetryPolicy() core.RetryPolicy {
	return core.RetryPolicy{
		MaxRetries:        l.MaxRetries,
		BaseDelay:         l.BaseDelay,
		MaxDelay:          l.MaxDelay,
		BackoffMultiplier: l.BackoffMultiplier,
	}
}
