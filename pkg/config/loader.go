package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
)

// Load reads configuration from the per-environment YAML file and environment
// variables, validates it, and returns the resulting Config together with the
// viper instance (kept for hot reload).
func Load() (*Config, *viper.Viper, error) {
	// Missing env files are fine; they only exist in local development.
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees bound or defaulted keys, so the secret needs an
	// explicit binding to come from the environment.
	_ = v.BindEnv("bot.token", "BOT_TOKEN")

	setEconomyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Economy.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validate economy config: %w", err)
	}

	return &cfg, v, nil
}

// WatchEconomy re-reads the config file on change and invokes onChange with
// the new economy constants when they pass validation. Used for live tuning
// of rates and tables without a restart.
func WatchEconomy(v *viper.Viper, log *slog.Logger, onChange func(economy.Config)) {
	if v == nil || onChange == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			log.Error("config reload failed", slog.String("file", event.Name), slog.Any("error", err))
			return
		}

		if err := cfg.Economy.Validate(); err != nil {
			log.Error("rejected economy config reload", slog.Any("error", err))
			return
		}

		log.Info("economy config reloaded", slog.String("file", event.Name))
		onChange(cfg.Economy)
	})

	v.WatchConfig()
}

func setEconomyDefaults(v *viper.Viper) {
	def := economy.DefaultConfig()

	v.SetDefault("economy.max_energy", def.MaxEnergy)
	v.SetDefault("economy.max_electricity", def.MaxElectricity)
	v.SetDefault("economy.base_click_coins", def.BaseClickCoins)
	v.SetDefault("economy.xp_per_click", def.XPPerClick)
	v.SetDefault("economy.xp_level_base", def.XPLevelBase)
	v.SetDefault("economy.xp_level_exponent", def.XPLevelExponent)
	v.SetDefault("economy.diamond_drop_chance", def.DiamondDropChance)
	v.SetDefault("economy.min_mining_interval", def.MinMiningInterval)
	v.SetDefault("economy.boost_cost_diamonds", def.BoostCostDiamonds)
	v.SetDefault("economy.boost_duration", def.BoostDuration)
	v.SetDefault("economy.boost_multiplier", def.BoostMultiplier)
	v.SetDefault("economy.energy_refill_cost", def.EnergyRefillCost)
	v.SetDefault("economy.energy_refill_amount", def.EnergyRefillAmount)
	v.SetDefault("economy.energy_regen_per_minute", def.EnergyRegenPerMinute)
	v.SetDefault("economy.electricity_regen_per_minute", def.ElectricityRegenPerMinute)
	v.SetDefault("economy.daily_reward_coins", def.DailyRewardCoins)
	v.SetDefault("economy.daily_reward_diamonds", def.DailyRewardDiamonds)
	v.SetDefault("economy.market_tax_percent", def.MarketTaxPercent)
}
