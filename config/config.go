// Package config loads settings configuration from a file and the environment.
package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/settings/codec"
)

// EnvPrefix prefixes every environment override: "cache.enabled" is read
// from SETTINGS_CACHE_ENABLED.
const EnvPrefix = "SETTINGS"

// Config is the full configuration of a settings deployment.
// Map keys (repository and connection names) are case-insensitive and
// come back lower-cased.
type Config struct {
	Default      string                `mapstructure:"default"`
	Codec        string                `mapstructure:"codec"`
	MaxDecode    int                   `mapstructure:"max_decode"`
	Cache        Cache                 `mapstructure:"cache"`
	Repositories map[string]Repository `mapstructure:"repositories"`
	Connections  Connections           `mapstructure:"connections"`
	Log          Log                   `mapstructure:"log"`
	Hooks        Hooks                 `mapstructure:"hooks"`
}

// Cache selects and tunes the cache collaborator.
type Cache struct {
	Enabled    bool      `mapstructure:"enabled"`
	Store      string    `mapstructure:"store"` // none, redis, ristretto, bigcache, ttlcache
	Prefix     string    `mapstructure:"prefix"`
	Connection string    `mapstructure:"connection"` // redis store only
	Ristretto  Ristretto `mapstructure:"ristretto"`
	Bigcache   Bigcache  `mapstructure:"bigcache"`
	Ttlcache   Ttlcache  `mapstructure:"ttlcache"`
}

type Ristretto struct {
	NumCounters int64 `mapstructure:"num_counters"`
	MaxCost     int64 `mapstructure:"max_cost"`
	BufferItems int64 `mapstructure:"buffer_items"`
}

type Bigcache struct {
	LifeWindow         time.Duration `mapstructure:"life_window"`
	MaxEntrySize       int           `mapstructure:"max_entry_size"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb"`
}

type Ttlcache struct {
	Capacity uint64 `mapstructure:"capacity"`
}

// Repository is one named repository block. Driver defaults to the block name.
type Repository struct {
	Driver     string `mapstructure:"driver"`
	Connection string `mapstructure:"connection"`
	Table      string `mapstructure:"table"`  // database driver
	Prefix     string `mapstructure:"prefix"` // redis driver
}

type Connections struct {
	Database map[string]Database `mapstructure:"database"`
	Redis    map[string]Redis    `mapstructure:"redis"`
}

type Database struct {
	Dialect      string `mapstructure:"dialect"` // sqlite, postgres, mysql
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Log struct {
	Backend    string `mapstructure:"backend"` // zap, zerolog, logrus, slog
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // console or json
	File       string `mapstructure:"file"`   // empty => stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Hooks selects the event hooks attached to the settings handle.
type Hooks struct {
	Log          bool   `mapstructure:"log"`            // slog event lines
	LogFillEvery uint64 `mapstructure:"log_fill_every"` // sample cache fills; 0 logs all
	Metrics      bool   `mapstructure:"metrics"`        // prometheus counters
	Service      string `mapstructure:"service"`        // metrics service label
	AsyncWorkers int    `mapstructure:"async_workers"`  // 0 delivers inline
	AsyncQueue   int    `mapstructure:"async_queue"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default", "database")
	v.SetDefault("codec", "msgpack")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.store", "none")
	v.SetDefault("cache.prefix", "settings")
	v.SetDefault("cache.connection", "default")
	v.SetDefault("cache.ristretto.num_counters", 10_000)
	v.SetDefault("cache.ristretto.max_cost", 1<<20)
	v.SetDefault("cache.ristretto.buffer_items", 64)
	v.SetDefault("repositories.database.driver", "database")
	v.SetDefault("repositories.database.connection", "default")
	v.SetDefault("repositories.database.table", "settings")
	v.SetDefault("repositories.redis.driver", "redis")
	v.SetDefault("repositories.redis.connection", "default")
	v.SetDefault("repositories.redis.prefix", "setting")
	v.SetDefault("log.backend", "zap")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("hooks.service", "settings")
	v.SetDefault("hooks.async_queue", 1024)
}

// Load reads path (any format viper understands) and applies environment
// overrides. An empty path looks for an optional "settings.*" file in the
// working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, Config{})
	// legacy variable names
	_ = v.BindEnv("default", "SETTINGS_DEFAULT", "SETTINGS_DRIVER")
	_ = v.BindEnv("cache.enabled", "SETTINGS_CACHE_ENABLED", "SETTING_CACHE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		v.SetConfigName("settings")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return &c, c.Validate()
}

// Validate checks the parts of the configuration that do not need a live
// connection. Drivers and connection names are checked by the backend.
func (c *Config) Validate() error {
	invalid := "invalid config"

	if _, ok := c.Repositories[strings.ToLower(c.Default)]; !ok {
		return errors.Wrapf(ErrUnknownRepository, "%s: default %q", invalid, c.Default)
	}
	if _, err := codec.ParseFormat(c.Codec); err != nil {
		return errors.Wrap(ErrUnknownCodec, invalid)
	}
	switch strings.ToLower(c.Cache.Store) {
	case "", "none", "redis", "ristretto", "bigcache", "ttlcache":
	default:
		return errors.Wrapf(ErrUnknownCacheStore, "%s: %q", invalid, c.Cache.Store)
	}
	switch strings.ToLower(c.Log.Backend) {
	case "", "zap", "zerolog", "logrus", "slog":
	default:
		return errors.Wrapf(ErrUnknownLogBackend, "%s: %q", invalid, c.Log.Backend)
	}
	if c.Hooks.AsyncWorkers < 0 || c.Hooks.AsyncQueue < 0 {
		return errors.Wrap(ErrNegativeAsync, invalid)
	}
	if c.MaxDecode < 0 {
		return errors.Wrap(ErrNegativeMaxDecode, invalid)
	}
	return nil
}

// Repository returns the named repository block with its driver resolved.
func (c *Config) Repository(name string) (Repository, error) {
	if name == "" {
		name = c.Default
	}
	name = strings.ToLower(name)
	r, ok := c.Repositories[name]
	if !ok {
		return Repository{}, errors.Wrapf(ErrUnknownRepository, "%q", name)
	}
	if r.Driver == "" {
		r.Driver = name
	}
	return r, nil
}

// bindEnvs registers every struct leaf of cfg so that viper consults the
// matching environment variable on Unmarshal. Maps are skipped; their keys
// are only known from the file.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string(nil), parts...), tag)
		switch f.Type.Kind() {
		case reflect.Struct:
			bindEnvs(v, val.Field(i).Interface(), key...)
		case reflect.Map:
		default:
			_ = v.BindEnv(strings.Join(key, "."))
		}
	}
}
