// Package config loads the faucet and role tooling settings from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// ErrMissing is returned when a required setting is absent.
var ErrMissing = errors.New("required configuration is missing")

// NativeMint is the mint sentinel that selects the chain's native unit.
const NativeMint = "So11111111111111111111111111111111111111112"

// DefaultTargetChannelID is the faucet channel used when $TARGET_CHANNEL_ID is
// unset.
const DefaultTargetChannelID discord.ChannelID = 1402734319755202640

// Config holds every setting recognized by the binaries in this module. Each
// binary only validates the subset it needs.
type Config struct {
	Discord DiscordConfig
	Ledger  LedgerConfig
	Faucet  FaucetConfig
	Store   StoreConfig
	Roles   RolesConfig
	Log     LogConfig
	// MetricsAddr is the listen address of the Prometheus endpoint. Empty
	// disables it.
	MetricsAddr string
}

type DiscordConfig struct {
	Token           string
	GuildID         discord.GuildID
	TargetChannelID discord.ChannelID
}

// BotToken returns the token with the "Bot " prefix the gateway and REST API
// expect.
func (c DiscordConfig) BotToken() string {
	if strings.HasPrefix(c.Token, "Bot ") {
		return c.Token
	}
	return "Bot " + c.Token
}

type LedgerConfig struct {
	RPCURL string
	// PrivateKey is the base58-encoded custodial secret key.
	PrivateKey string
	TokenMint  string
}

// IsNative reports whether the configured mint is the native unit.
func (c LedgerConfig) IsNative() bool {
	return c.TokenMint == "" || c.TokenMint == NativeMint
}

type FaucetConfig struct {
	Amount           decimal.Decimal
	BalanceThreshold decimal.Decimal
	Cooldown         time.Duration
	// BypassRoleName is compared case-insensitively against the requester's
	// role names.
	BypassRoleName string
}

// DryRunKeyPrefix namespaces the test faucet's records in redis.
const DryRunKeyPrefix = "faucet:test_token_requests:"

type StoreConfig struct {
	// Driver is one of "badger", "sqlite" or "redis".
	Driver string
	Path   string
	// TestPath is the database of the test faucet.
	TestPath string
	RedisURL string
	// KeyPrefix namespaces redis keys. Empty uses the store's default.
	KeyPrefix string
}

// DryRun returns the store settings of the test faucet, whose records must
// never hold back requests to the real one.
func (c StoreConfig) DryRun() StoreConfig {
	c.Path = c.TestPath
	c.KeyPrefix = DryRunKeyPrefix
	return c
}

type RolesConfig struct {
	RoleName      string
	PyronautsRole string
	CSVFile       string
	// Rate is the number of mutating role calls allowed per second.
	Rate  float64
	Burst int
}

type LogConfig struct {
	Level string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if it exists; variables already set in the
// environment take precedence over it.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{
		Discord: DiscordConfig{
			Token:           getEnv("DISCORD_TOKEN", ""),
			TargetChannelID: DefaultTargetChannelID,
		},
		Ledger: LedgerConfig{
			RPCURL:     getEnv("FOGO_RPC_URL", ""),
			PrivateKey: getEnv("BOT_WALLET_PRIVATE_KEY", ""),
			TokenMint:  getEnv("FOGO_TOKEN_MINT", NativeMint),
		},
		Faucet: FaucetConfig{
			BypassRoleName: getEnv("BYPASS_ROLE_NAME", "Pyron Team"),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", "badger")),
			Path:     getEnv("DATABASE_PATH", "./fogo_requests.db"),
			TestPath: getEnv("TEST_DATABASE_PATH", "./test_fogo_requests.db"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Roles: RolesConfig{
			RoleName:      getEnv("ROLE_NAME", "test"),
			PyronautsRole: getEnv("PYRONAUTS_ROLE", "Pyronauts"),
			CSVFile:       getEnv("CSV_FILE", "users.csv"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}

	var err error

	if cfg.Discord.GuildID, err = getEnvSnowflake[discord.GuildID]("GUILD_ID", 0); err != nil {
		return nil, err
	}
	if cfg.Discord.TargetChannelID, err = getEnvSnowflake("TARGET_CHANNEL_ID", DefaultTargetChannelID); err != nil {
		return nil, err
	}
	if cfg.Faucet.Amount, err = getEnvDecimal("FAUCET_AMOUNT", "0.1"); err != nil {
		return nil, err
	}
	if cfg.Faucet.BalanceThreshold, err = getEnvDecimal("BALANCE_THRESHOLD", "0.1"); err != nil {
		return nil, err
	}
	if cfg.Faucet.Cooldown, err = getEnvDuration("COOLDOWN", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Roles.Rate, err = getEnvFloat("ROLE_RATE", 2.5); err != nil {
		return nil, err
	}
	if cfg.Roles.Burst, err = getEnvInt("ROLE_BURST", 5); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "badger", "sqlite", "redis":
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of badger, sqlite, redis", c.Store.Driver)
	}
	if !c.Faucet.Amount.IsPositive() {
		return fmt.Errorf("FAUCET_AMOUNT must be positive, got %s", c.Faucet.Amount)
	}
	if c.Faucet.Cooldown < 0 {
		return fmt.Errorf("COOLDOWN must not be negative, got %s", c.Faucet.Cooldown)
	}
	if c.Roles.Rate <= 0 || c.Roles.Burst <= 0 {
		return fmt.Errorf("ROLE_RATE and ROLE_BURST must be positive")
	}
	return nil
}

// RequireDiscord checks the settings needed to log into Discord.
func (c *Config) RequireDiscord() error {
	return requireEnv("DISCORD_TOKEN", c.Discord.Token != "")
}

// RequireGuild checks the settings needed by the role tools.
func (c *Config) RequireGuild() error {
	return errors.Join(
		c.RequireDiscord(),
		requireEnv("GUILD_ID", c.Discord.GuildID.IsValid()),
	)
}

// RequireLedger checks the settings needed to reach the ledger RPC.
func (c *Config) RequireLedger() error {
	return requireEnv("FOGO_RPC_URL", c.Ledger.RPCURL != "")
}

// RequireCustody checks the settings needed to sign transfers.
func (c *Config) RequireCustody() error {
	return errors.Join(
		c.RequireLedger(),
		requireEnv("BOT_WALLET_PRIVATE_KEY", c.Ledger.PrivateKey != ""),
	)
}

func requireEnv(key string, ok bool) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: $%s", ErrMissing, key)
}

// SlogLevel parses the configured log level, falling back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

type snowflake interface {
	~uint64
}

func getEnvSnowflake[T snowflake](key string, fallback T) (T, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid snowflake: %w", key, err)
	}
	return T(id), nil
}
