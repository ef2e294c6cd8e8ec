package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/csmacd/internal/simulation"
)

var (
	ErrReportAddrRequired = errors.New("config: report addr is required")
	ErrInvalidMaxSessions = errors.New("config: report max_sessions must be positive")
)

// Config is the resolved csmasim configuration.
type Config struct {
	Simulation simulation.Config
	Report     ReportConfig
}

// ReportConfig configures the HTTP report surface.
type ReportConfig struct {
	Addr        string
	CorsOrigins []string
	MaxSessions int
	// AuthToken gates POST /sessions when non-empty.
	AuthToken string
}

// fileConfig mirrors the TOML layout; durations are Go duration strings.
type fileConfig struct {
	InterframeGap string           `toml:"interframe_gap"`
	SlotTime      string           `toml:"slot_time"`
	SenseJitter   string           `toml:"sense_jitter"`
	MaxAttempts   int              `toml:"max_attempts"`
	FrameTemplate string           `toml:"frame_template"`
	StationPrefix string           `toml:"station_prefix"`
	Seed          int64            `toml:"seed"`
	Report        reportFileConfig `toml:"report"`
}

type reportFileConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	MaxSessions int      `toml:"max_sessions"`
	AuthToken   string   `toml:"auth_token,omitempty"`
}

func Default() Config {
	return Config{
		Simulation: simulation.DefaultConfig(),
		Report: ReportConfig{
			Addr:        ":9400",
			CorsOrigins: []string{"http://localhost:3000"},
			MaxSessions: 32,
		},
	}
}

// Load reads path over Default; only keys present in the file override.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	st := &cfg.Simulation.Station
	if meta.IsDefined("interframe_gap") {
		if st.InterframeGap, err = parseDuration("interframe_gap", raw.InterframeGap); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("slot_time") {
		if st.SlotTime, err = parseDuration("slot_time", raw.SlotTime); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("sense_jitter") {
		if st.SenseJitter, err = parseDuration("sense_jitter", raw.SenseJitter); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("max_attempts") {
		st.MaxAttemptCount = raw.MaxAttempts
	}
	if meta.IsDefined("frame_template") {
		st.FrameTemplate = raw.FrameTemplate
	}
	if meta.IsDefined("station_prefix") {
		cfg.Simulation.StationPrefix = strings.TrimSpace(raw.StationPrefix)
	}
	if meta.IsDefined("seed") {
		cfg.Simulation.Seed = raw.Seed
	}
	if meta.IsDefined("report", "addr") {
		cfg.Report.Addr = strings.TrimSpace(raw.Report.Addr)
	}
	if meta.IsDefined("report", "cors_origins") {
		cfg.Report.CorsOrigins = normalizeOrigins(raw.Report.CorsOrigins)
	}
	if meta.IsDefined("report", "max_sessions") {
		cfg.Report.MaxSessions = raw.Report.MaxSessions
	}
	if meta.IsDefined("report", "auth_token") {
		cfg.Report.AuthToken = strings.TrimSpace(raw.Report.AuthToken)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if err := cfg.Simulation.Station.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Report.Addr) == "" {
		return ErrReportAddrRequired
	}
	if cfg.Report.MaxSessions <= 0 {
		return ErrInvalidMaxSessions
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
