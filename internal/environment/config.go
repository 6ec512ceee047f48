// Package environment reads the recognized configuration surface: an
// optional TOML options file plus environment variables (with .env
// support) for the ambient pieces.
package environment

import (
	"fmt"
	"os"
	"time"

	"github.com/genpipe/memtrim/api"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds every recognized option with its default.
type Config struct {
	// AggressiveTrim gates the OS trim stage entirely.
	AggressiveTrim bool `toml:"aggressive_trim"`

	// EnablePrivileges gates token privilege elevation.
	EnablePrivileges bool `toml:"enable_privileges"`

	// ExternalHelper gates the out-of-process fallback.
	ExternalHelper bool `toml:"external_helper"`

	// SkipTrimIfCLow gates the free-space guard on the system drive.
	SkipTrimIfCLow bool `toml:"skip_trim_if_c_low"`

	// MinCFreeGb is the guard threshold in gigabytes.
	MinCFreeGb float64 `toml:"min_c_free_gb"`

	// PurgeStandby requests the system-wide standby-list purge stage.
	PurgeStandby bool `toml:"purge_standby"`

	// HelperTimeoutSec bounds the external helper wait.
	HelperTimeoutSec int `toml:"helper_timeout_sec"`

	// Env-only settings.
	NatsUrl   string `toml:"-"`
	ReportDir string `toml:"-"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		AggressiveTrim:   true,
		EnablePrivileges: true,
		ExternalHelper:   true,
		SkipTrimIfCLow:   true,
		MinCFreeGb:       20.0,
		PurgeStandby:     false,
		HelperTimeoutSec: int(api.DefaultHelperTimeout / time.Second),
	}
}

// Read builds the config from defaults, the TOML options file at path (if
// it exists), and environment variables. A missing .env file is fine.
func Read(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No options file, defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("failed to read options file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse options file %s: %w", path, err)
			}
		}
	}

	cfg.NatsUrl = os.Getenv("MEMTRIM_NATS_URL")
	cfg.ReportDir = os.Getenv("MEMTRIM_REPORT_DIR")

	return cfg, nil
}

// ToRequest converts the config into a single-run trim request.
func (c Config) ToRequest(targetPid int32) api.TrimRequest {
	return api.TrimRequest{
		TargetPid:        targetPid,
		Aggressive:       c.AggressiveTrim,
		UsePrivileges:    c.EnablePrivileges,
		UseHelper:        c.ExternalHelper,
		SkipIfDiskLow:    c.SkipTrimIfCLow,
		PurgeStandby:     c.PurgeStandby,
		MinDiskFreeBytes: int64(c.MinCFreeGb * (1 << 30)),
		HelperTimeout:    time.Duration(c.HelperTimeoutSec) * time.Second,
	}
}
