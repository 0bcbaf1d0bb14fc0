package cliconfig

import "os"

// ApplyEnvConfig applies RDSPARSE_* environment variables to cfg, skipping
// flags that were set explicitly. Returns an error for malformed numbers.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("session", os.Getenv("RDSPARSE_SESSION"), &cfg.SessionLog)
	s.setString("tag", os.Getenv("RDSPARSE_TAG"), &cfg.Tag)
	s.setString("out-dir", os.Getenv("RDSPARSE_OUT_DIR"), &cfg.OutDir)
	s.setString("input", os.Getenv("RDSPARSE_INPUT"), &cfg.DecodeInput)
	s.setString("output", os.Getenv("RDSPARSE_OUTPUT"), &cfg.DecodeOutput)
	s.setString("report", os.Getenv("RDSPARSE_REPORT"), &cfg.Report)
	s.setString("log-level", os.Getenv("RDSPARSE_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("RDSPARSE_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setIntFromString("min-lines", os.Getenv("RDSPARSE_MIN_LINES"), &cfg.MinLines); err != nil {
		return err
	}
	if err := s.setIntFromString("tokens", os.Getenv("RDSPARSE_TOKENS"), &cfg.Tokens); err != nil {
		return err
	}

	s.setBoolFromString("strict", os.Getenv("RDSPARSE_STRICT"), &cfg.Strict)
	s.setBoolFromString("watch", os.Getenv("RDSPARSE_WATCH"), &cfg.Watch)

	return nil
}
