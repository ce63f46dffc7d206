package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for the activity monitor when no stored settings exist or the
// stored record is malformed.
const (
	DefaultActivityInterval = 300 // seconds
	DefaultActivityPoll     = 10  // seconds
)

type Config struct {
	Client struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		DBPath  string `yaml:"db_path"`
		// SeedDemo populates two demo chats on a fresh store.
		SeedDemo bool `yaml:"seed_demo"`
	} `yaml:"client"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Activity struct {
		Enabled  bool     `yaml:"enabled"`
		Interval Duration `yaml:"interval"`
		// Poll is the fixed check period; independent of Interval.
		Poll Duration `yaml:"poll"`
	} `yaml:"activity"`
	Notify struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"notify"`
	Backup struct {
		Enabled       bool      `yaml:"enabled"`
		Cron          string    `yaml:"cron"`
		Dir           string    `yaml:"dir"`
		MaxExportSize SizeBytes `yaml:"max_export_size"`
	} `yaml:"backup"`
}

// Addr returns host:port for the local control surface.
func (c *Config) Addr() string {
	addr := c.Client.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	p := c.Client.Port
	if p == 0 {
		p = 8391
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", "127.0.0.1:8391", "control surface listen address")
	dbPtr := flag.String("db", "./.pocketchat", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dbPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies POCKETCHAT_* environment overrides onto cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	if v := os.Getenv("POCKETCHAT_ADDR"); v != "" {
		envUsed = true
		if h, p, ok := strings.Cut(v, ":"); ok {
			cfg.Client.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Client.Port = pi
			}
		} else {
			cfg.Client.Address = v
		}
	}
	if v := os.Getenv("POCKETCHAT_DB_PATH"); v != "" {
		envUsed = true
		cfg.Client.DBPath = v
	}
	if v := os.Getenv("POCKETCHAT_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("POCKETCHAT_ACTIVITY_ENABLED"); v != "" {
		envUsed = true
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes":
			cfg.Activity.Enabled = true
		default:
			cfg.Activity.Enabled = false
		}
	}
	if v := os.Getenv("POCKETCHAT_ACTIVITY_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Activity.Interval = Duration(int64(n) * int64(1e9))
		}
	}
	if v := os.Getenv("POCKETCHAT_BACKUP_CRON"); v != "" {
		envUsed = true
		cfg.Backup.Cron = v
		cfg.Backup.Enabled = true
	}
	if v := os.Getenv("POCKETCHAT_BACKUP_DIR"); v != "" {
		envUsed = true
		cfg.Backup.Dir = v
	}
	return envUsed
}

// LoadEffective loads config from the given path and applies environment
// overrides. A missing file is not an error; env and defaults still apply.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and POCKETCHAT_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("POCKETCHAT_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
