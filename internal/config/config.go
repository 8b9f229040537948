package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/txwait"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"github.com/gaze-network/pool-portal/pkg/middleware/requestcontext"
	"github.com/gaze-network/pool-portal/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the automatic environment names, E.g. `PORTAL_POLLING_POOLS_INTERVAL`.
const EnvPrefix = "PORTAL"

var (
	isInit bool
	mu     sync.Mutex
	config = &Config{}

	flagBindings = map[string]*pflag.Flag{}
)

type Config struct {
	Logger      logger.Config    `mapstructure:"logger"`
	ControlAPI  backend.Config   `mapstructure:"control_api"`
	Transaction txwait.Config    `mapstructure:"transaction"`
	Polling     Polling          `mapstructure:"polling"`
	Wallet      Wallet           `mapstructure:"wallet"`
	HTTPServer  HTTPServerConfig `mapstructure:"http_server"`
}

type Polling struct {
	PoolsInterval        time.Duration `mapstructure:"pools_interval"`
	TransactionsInterval time.Duration `mapstructure:"transactions_interval"`
}

type Wallet struct {
	BalanceType string `mapstructure:"balance_type"`
}

type HTTPServerConfig struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"requestip"`
}

// legacyEnv are environment names read in addition to the prefixed
// `PORTAL_SECTION_KEY` form.
var legacyEnv = map[string]string{
	"control_api.url":       "CONTROL_API",
	"control_api.mock_data": "MOCK_DATA",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.output", "TEXT")
	v.SetDefault("logger.debug", false)
	v.SetDefault("control_api.url", "http://localhost:8080")
	v.SetDefault("control_api.mock_data", false)
	v.SetDefault("control_api.debug", false)
	v.SetDefault("control_api.timeout", 30*time.Second)
	v.SetDefault("control_api.mock_latency_scale", 1.0)
	v.SetDefault("transaction.interval", txwait.DefaultInterval)
	v.SetDefault("transaction.timeout", time.Duration(0))
	v.SetDefault("transaction.max_query_errors", txwait.DefaultMaxQueryErrors)
	v.SetDefault("polling.pools_interval", 10*time.Second)
	v.SetDefault("polling.transactions_interval", 4*time.Second)
	v.SetDefault("wallet.balance_type", "gla")
	v.SetDefault("http_server.port", 3000)
}

// Parse parses the configuration from the config file, environment variables
// and bound flags. Every call starts from a clean state.
func Parse(configFile ...string) Config {
	mu.Lock()
	defer mu.Unlock()
	return parse(configFile...)
}

// Load returns the loaded configuration, parsing it on first use.
func Load() Config {
	mu.Lock()
	defer mu.Unlock()
	if isInit {
		return *config
	}
	return parse()
}

// BindPFlag binds a specific key to a pflag (as used by cobra).
// Example (where serverCmd is a Cobra instance):
//
//	serverCmd.Flags().Int("port", 1138, "Port to run Application server on")
//	config.BindPFlag("port", serverCmd.Flags().Lookup("port"))
func BindPFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slog.String("package", "config"), slog.String("key", key))
	}
	mu.Lock()
	defer mu.Unlock()
	flagBindings[key] = flag
}

func parse(configFile ...string) Config {
	ctx := logger.WithPackage(context.Background(), "config")

	v := viper.New()
	setDefaults(v)
	if len(configFile) > 0 && configFile[0] != "" {
		v.SetConfigFile(configFile[0])
	} else {
		v.AddConfigPath("./")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		// BindEnv only fails without a key.
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
	for key, flag := range flagBindings {
		if err := v.BindPFlag(key, flag); err != nil {
			logger.PanicContext(ctx, "Something went wrong, failed to bind flag for config", slog.String("key", key), slogx.Error(err))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var errNotfound viper.ConfigFileNotFoundError
		if errors.As(err, &errNotfound) {
			logger.WarnContext(ctx, "Config file not found, use default value", slogx.Error(err))
		} else {
			logger.PanicContext(ctx, "Invalid config file", slogx.Error(err))
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		logger.PanicContext(ctx, "Something went wrong, failed to unmarshal config", slogx.Error(err))
	}

	*config = conf
	isInit = true
	return conf
}
