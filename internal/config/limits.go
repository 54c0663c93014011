package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RateLimit is a token-bucket policy: Rate tokens per second, Burst capacity.
type RateLimit struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

// Limits groups the per-endpoint rate limit policies.
type Limits struct {
	Signin      RateLimit `mapstructure:"signin"`
	MessageSend RateLimit `mapstructure:"message_send"`
}

func DefaultLimits() Limits {
	return Limits{
		Signin:      RateLimit{Rate: 0.2, Burst: 10},
		MessageSend: RateLimit{Rate: 0.5, Burst: 5},
	}
}

// LimitsHolder keeps the current Limits and swaps them when limits.yml changes.
type LimitsHolder struct {
	current atomic.Value // holds Limits
}

// NewStaticLimitsHolder returns a holder that never reloads.
func NewStaticLimitsHolder(limits Limits) *LimitsHolder {
	holder := &LimitsHolder{}
	holder.current.Store(limits)
	return holder
}

func NewLimitsHolder(log *zap.Logger) (*LimitsHolder, error) {
	log = log.Named("config.limits")
	v := viper.New()

	v.SetConfigName("limits")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/hushbox")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HUSHBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLimits()
	v.SetDefault("limits.signin.rate", defaults.Signin.Rate)
	v.SetDefault("limits.signin.burst", defaults.Signin.Burst)
	v.SetDefault("limits.message_send.rate", defaults.MessageSend.Rate)
	v.SetDefault("limits.message_send.burst", defaults.MessageSend.Burst)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	limits, err := decodeLimits(v)
	if err != nil {
		return nil, err
	}
	if err := validateLimits(limits); err != nil {
		return nil, err
	}

	holder := NewStaticLimitsHolder(limits)
	if !fileLoaded {
		log.Info("limits file not found, using defaults")
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeLimits(v)
		if err != nil {
			log.Warn("limits reload failed", zap.Error(err))
			return
		}
		if err := validateLimits(updated); err != nil {
			log.Warn("invalid limits ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("limits reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

// decodeLimits goes through Unmarshal rather than UnmarshalKey so env overrides apply.
func decodeLimits(v *viper.Viper) (Limits, error) {
	var doc struct {
		Limits Limits `mapstructure:"limits"`
	}
	if err := v.Unmarshal(&doc); err != nil {
		return Limits{}, err
	}
	return doc.Limits, nil
}

func (h *LimitsHolder) Get() Limits {
	return h.current.Load().(Limits)
}

func validateLimits(limits Limits) error {
	for name, limit := range map[string]RateLimit{
		"signin":       limits.Signin,
		"message_send": limits.MessageSend,
	} {
		if limit.Rate <= 0 || limit.Burst <= 0 {
			return errors.New("limits." + name + " rate and burst must be positive")
		}
	}
	return nil
}
