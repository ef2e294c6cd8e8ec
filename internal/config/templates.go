package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Template renders Default as a TOML document Load accepts.
func Template() (string, error) {
	return Render(Default())
}

func Render(cfg Config) (string, error) {
	st := cfg.Simulation.Station
	raw := fileConfig{
		InterframeGap: st.InterframeGap.String(),
		SlotTime:      st.SlotTime.String(),
		SenseJitter:   st.SenseJitter.String(),
		MaxAttempts:   st.MaxAttemptCount,
		FrameTemplate: st.FrameTemplate,
		StationPrefix: cfg.Simulation.StationPrefix,
		Seed:          cfg.Simulation.Seed,
		Report: reportFileConfig{
			Addr:        cfg.Report.Addr,
			CorsOrigins: cfg.Report.CorsOrigins,
			MaxSessions: cfg.Report.MaxSessions,
			AuthToken:   cfg.Report.AuthToken,
		},
	}
	data, err := toml.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("config render failed: %w", err)
	}
	return string(data), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
