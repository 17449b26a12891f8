package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Checkin  CheckinConfig  `mapstructure:"checkin"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Admin    AdminConfig    `mapstructure:"admin"`
	R2       R2Config       `mapstructure:"r2"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	GatewayToken   string   `mapstructure:"gateway_token"`
	BodyLimit      int      `mapstructure:"body_limit"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	UseMemory       bool          `mapstructure:"use_memory"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type ChainConfig struct {
	RPCURL           string        `mapstructure:"rpc_url"`
	CheckinContract  string        `mapstructure:"checkin_contract"`
	RewardContract   string        `mapstructure:"reward_contract"`
	ServerPrivateKey string        `mapstructure:"server_private_key"`
	RPCTimeout       time.Duration `mapstructure:"rpc_timeout"`
}

type CheckinConfig struct {
	Points     int64 `mapstructure:"points"`
	DailyLimit int64 `mapstructure:"daily_limit"`
}

type CacheConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	WarmInterval time.Duration `mapstructure:"warm_interval"`
}

type AdminConfig struct {
	Emails []string `mapstructure:"emails"`
}

type R2Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	CDNBaseURL      string `mapstructure:"cdn_base_url"`
}

// Enabled reports whether enough R2 settings are present to build a client.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// legacy environment names still honoured next to the SECTION_KEY form
var envAliases = map[string][]string{
	"server.port":              {"SERVER_PORT", "PORT"},
	"server.allowed_origins":   {"SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	"server.gateway_token":     {"SERVER_GATEWAY_TOKEN", "GATEWAY_TOKEN"},
	"database.url":             {"DATABASE_URL"},
	"database.use_memory":      {"DATABASE_USE_MEMORY", "USE_MEMORY"},
	"chain.rpc_url":            {"CHAIN_RPC_URL", "BASE_RPC_URL"},
	"chain.checkin_contract":   {"CHAIN_CHECKIN_CONTRACT", "CHECKIN_CONTRACT_ADDRESS"},
	"chain.reward_contract":    {"CHAIN_REWARD_CONTRACT", "REWARD1155_ADDRESS"},
	"chain.server_private_key": {"CHAIN_SERVER_PRIVATE_KEY", "SERVER_PRIVATE_KEY"},
	"admin.emails":             {"ADMIN_EMAILS"},
	"r2.account_id":            {"R2_ACCOUNT_ID", "CLOUDFLARE_ACCOUNT_ID"},
	"r2.access_key_id":         {"R2_ACCESS_KEY_ID"},
	"r2.access_key_secret":     {"R2_ACCESS_KEY_SECRET"},
	"r2.bucket":                {"R2_BUCKET", "R2_BUCKET_NAME"},
	"r2.cdn_base_url":          {"R2_CDN_BASE_URL", "CDN_BASE_URL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5200)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.gateway_token", "")
	v.SetDefault("server.body_limit", 1024*1024)

	v.SetDefault("database.url", "")
	v.SetDefault("database.use_memory", false)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.checkin_contract", "")
	v.SetDefault("chain.reward_contract", "")
	v.SetDefault("chain.server_private_key", "")
	v.SetDefault("chain.rpc_timeout", 10*time.Second)

	v.SetDefault("checkin.points", 100)
	v.SetDefault("checkin.daily_limit", 10)

	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.warm_interval", time.Duration(0))

	v.SetDefault("admin.emails", []string{})

	v.SetDefault("r2.account_id", "")
	v.SetDefault("r2.access_key_id", "")
	v.SetDefault("r2.access_key_secret", "")
	v.SetDefault("r2.bucket", "")
	v.SetDefault("r2.cdn_base_url", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

// Load reads .env (if present), an optional YAML file and the environment.
// An empty configPath falls back to $CONFIG_PATH; no file at all is fine.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Server.AllowedOrigins = trimAll(cfg.Server.AllowedOrigins)
	cfg.Admin.Emails = trimAll(cfg.Admin.Emails)
	for i, e := range cfg.Admin.Emails {
		cfg.Admin.Emails[i] = strings.ToLower(e)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Checkin.Points <= 0 {
		return errors.New("checkin.points must be positive")
	}
	if c.Checkin.DailyLimit <= 0 {
		return errors.New("checkin.daily_limit must be positive")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}
	if !c.Database.UseMemory && c.Database.URL == "" {
		return errors.New("database.url is required unless database.use_memory is set")
	}
	return nil
}

// trimAll also splits comma-joined entries, which is how list values arrive from env.
func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
