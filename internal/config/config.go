package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Uniswap V3 factory on Ethereum mainnet and the block it was deployed in.
const (
	DefaultFactory   = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
	DefaultFromBlock = uint64(12369621)
)

// ScanConfig holds configuration for the scan command.
type ScanConfig struct {
	RPCURL        string
	Factory       string
	FromBlock     uint64
	Window        uint64
	In            string
	Out           string
	Format        string
	Errors        string
	ProgressEvery int
	MetricsAddr   string
	LogLevel      string
}

// FetchConfig holds configuration for the fetch command.
type FetchConfig struct {
	RPCURL    string
	Factory   string
	FromBlock uint64
	Window    uint64
	Out       string
	LogLevel  string
}

// LoadScan merges .env, config file, environment variables, and flags into ScanConfig.
func LoadScan(cfgFile string, flags *pflag.FlagSet) (ScanConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out":            "pools.csv",
		"format":         "csv",
		"progress-every": 10,
	})
	if err != nil {
		return ScanConfig{}, err
	}

	return ScanConfig{
		RPCURL:        v.GetString("rpc"),
		Factory:       v.GetString("factory"),
		FromBlock:     v.GetUint64("from"),
		Window:        v.GetUint64("window"),
		In:            v.GetString("in"),
		Out:           v.GetString("out"),
		Format:        strings.ToLower(v.GetString("format")),
		Errors:        v.GetString("errors"),
		ProgressEvery: v.GetInt("progress-every"),
		MetricsAddr:   v.GetString("metrics-addr"),
		LogLevel:      v.GetString("log-level"),
	}, nil
}

// Validate reports missing required settings. The RPC endpoint is needed
// even when logs come from a file, for token metadata calls.
func (c ScanConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.In == "" && c.Factory == "" {
		return fmt.Errorf("factory address is required")
	}
	if c.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("progress-every must not be negative")
	}
	return nil
}

// LoadFetch merges .env, config file, environment variables, and flags into FetchConfig.
func LoadFetch(cfgFile string, flags *pflag.FlagSet) (FetchConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out": "./data/logs.jsonl",
	})
	if err != nil {
		return FetchConfig{}, err
	}

	return FetchConfig{
		RPCURL:    v.GetString("rpc"),
		Factory:   v.GetString("factory"),
		FromBlock: v.GetUint64("from"),
		Window:    v.GetUint64("window"),
		Out:       v.GetString("out"),
		LogLevel:  v.GetString("log-level"),
	}, nil
}

func (c FetchConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Factory == "" {
		return fmt.Errorf("factory address is required")
	}
	if c.Out == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}

func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	// A missing .env is fine; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("POOLSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("rpc", "POOLSCAN_RPC", "INFURA_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("factory", DefaultFactory)
	v.SetDefault("from", DefaultFromBlock)
	v.SetDefault("window", uint64(0))
	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}
