package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlatformConfig holds operator-tunable platform policy. It is loaded from
// platform.yml and hot-reloaded on change, so seat defaults and the quota
// plan catalog can be adjusted without a restart.
type PlatformConfig struct {
	DefaultSeatLimit   int             `mapstructure:"defaultSeatLimit"`
	MaxSeatLimit       int             `mapstructure:"maxSeatLimit"`
	PricingHorizonDays int             `mapstructure:"pricingHorizonDays"`
	QuotaPlans         []QuotaPlanSpec `mapstructure:"quotaPlans"`
}

// QuotaPlanSpec describes one transcription quota plan available for
// assignment to a tenant license.
type QuotaPlanSpec struct {
	Code            string `mapstructure:"code"`
	Name            string `mapstructure:"name"`
	IncludedMinutes int    `mapstructure:"includedMinutes"`
	OveragePolicy   string `mapstructure:"overagePolicy"`
}

const (
	OverageBlock  = "BLOCK"
	OverageNotify = "NOTIFY"
	OverageBill   = "BILL"
)

func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		DefaultSeatLimit:   10,
		MaxSeatLimit:       10_000,
		PricingHorizonDays: 3 * 365,
		QuotaPlans: []QuotaPlanSpec{
			{Code: "basic", Name: "Basic", IncludedMinutes: 600, OveragePolicy: OverageBlock},
			{Code: "standard", Name: "Standard", IncludedMinutes: 3_000, OveragePolicy: OverageNotify},
			{Code: "unlimited", Name: "Unlimited", IncludedMinutes: 0, OveragePolicy: OverageBill},
		},
	}
}

// PlatformConfigHolder exposes the current platform config. Reads are
// lock-free; reloads swap the whole value.
type PlatformConfigHolder struct {
	current atomic.Value // holds PlatformConfig
}

func NewPlatformConfigHolder() (*PlatformConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("platform")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tessera/config")
	v.AddConfigPath("/etc/tessera")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TESSERA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPlatformConfig()
		v.SetDefault("platform.defaultSeatLimit", defaults.DefaultSeatLimit)
		v.SetDefault("platform.maxSeatLimit", defaults.MaxSeatLimit)
		v.SetDefault("platform.pricingHorizonDays", defaults.PricingHorizonDays)
		v.SetDefault("platform.quotaPlans", defaults.QuotaPlans)
	}

	var cfg PlatformConfig
	if err := v.UnmarshalKey("platform", &cfg); err != nil {
		return nil, err
	}
	if err := validatePlatformConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlatformConfig
		if err := v.UnmarshalKey("platform", &updated); err != nil {
			log.Printf("[platform-config] reload failed: %v", err)
			return
		}
		if err := validatePlatformConfig(updated); err != nil {
			log.Printf("[platform-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[platform-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPlatformConfigHolder returns a holder pinned to cfg, with no
// file watching.
func NewStaticPlatformConfigHolder(cfg PlatformConfig) *PlatformConfigHolder {
	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// Current returns the active platform config.
func (h *PlatformConfigHolder) Current() PlatformConfig {
	cfg, _ := h.current.Load().(PlatformConfig)
	return cfg
}

// QuotaPlan looks up a quota plan spec by code.
func (h *PlatformConfigHolder) QuotaPlan(code string) (QuotaPlanSpec, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, plan := range h.Current().QuotaPlans {
		if strings.ToLower(plan.Code) == code {
			return plan, true
		}
	}
	return QuotaPlanSpec{}, false
}

func validatePlatformConfig(cfg PlatformConfig) error {
	if cfg.DefaultSeatLimit <= 0 {
		return errors.New("defaultSeatLimit must be positive")
	}
	if cfg.MaxSeatLimit < cfg.DefaultSeatLimit {
		return errors.New("maxSeatLimit must be >= defaultSeatLimit")
	}
	if cfg.PricingHorizonDays <= 0 {
		return errors.New("pricingHorizonDays must be positive")
	}
	seen := map[string]bool{}
	for _, plan := range cfg.QuotaPlans {
		code := strings.ToLower(strings.TrimSpace(plan.Code))
		if code == "" {
			return errors.New("quota plan code must not be empty")
		}
		if seen[code] {
			return errors.New("duplicate quota plan code: " + code)
		}
		seen[code] = true
		if plan.IncludedMinutes < 0 {
			return errors.New("includedMinutes must not be negative")
		}
		switch strings.ToUpper(plan.OveragePolicy) {
		case OverageBlock, OverageNotify, OverageBill:
		default:
			return errors.New("unknown overage policy: " + plan.OveragePolicy)
		}
	}
	return nil
}
