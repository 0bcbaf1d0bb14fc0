package cliconfig

import "testing"

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all env vars",
			envVars: map[string]string{
				"RDSPARSE_SESSION":    "/env/session.log",
				"RDSPARSE_TAG":        "<rds>",
				"RDSPARSE_MIN_LINES":  "10",
				"RDSPARSE_OUT_DIR":    "/env/out",
				"RDSPARSE_STRICT":     "1",
				"RDSPARSE_INPUT":      "2.csv",
				"RDSPARSE_OUTPUT":     "2_ascii.txt",
				"RDSPARSE_TOKENS":     "8",
				"RDSPARSE_REPORT":     "/env/report.json",
				"RDSPARSE_WATCH":      "true",
				"RDSPARSE_LOG_LEVEL":  "debug",
				"RDSPARSE_LOG_FORMAT": "json",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				SessionLog:   "/env/session.log",
				Tag:          "<rds>",
				MinLines:     10,
				OutDir:       "/env/out",
				Strict:       true,
				DecodeInput:  "2.csv",
				DecodeOutput: "2_ascii.txt",
				Tokens:       8,
				Report:       "/env/report.json",
				Watch:        true,
				LogLevel:     "debug",
				LogFormat:    "json",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"RDSPARSE_SESSION": "/env/session.log",
				"RDSPARSE_TOKENS":  "8",
			},
			changed:  map[string]bool{"session": true},
			initial:  Config{SessionLog: "/flag/session.log"},
			expected: Config{SessionLog: "/flag/session.log", Tokens: 8},
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"RDSPARSE_MIN_LINES": "twenty",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"RDSPARSE_STRICT": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{Strict: true},
			expected: Config{Strict: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Precedence order: flags > env > file > defaults.
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		SessionLog: "/file/session.log",
		Tag:        "<file>",
		OutDir:     "/file/out",
		Strict:     &trueVal,
	}

	t.Setenv("RDSPARSE_SESSION", "/env/session.log")
	t.Setenv("RDSPARSE_TAG", "<env>")

	changed := map[string]bool{"session": true}

	cfg := DefaultConfig()
	cfg.SessionLog = "/cli/session.log"

	ApplyFileConfig(&cfg, fileConf, changed)
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.SessionLog != "/cli/session.log" {
		t.Errorf("SessionLog = %v, want /cli/session.log (CLI should win)", cfg.SessionLog)
	}
	if cfg.Tag != "<env>" {
		t.Errorf("Tag = %v, want <env> (env should override file)", cfg.Tag)
	}
	if cfg.OutDir != "/file/out" {
		t.Errorf("OutDir = %v, want /file/out (file should set)", cfg.OutDir)
	}
	if !cfg.Strict {
		t.Error("Strict = false, want true (file should set)")
	}
	if cfg.MinLines != 20 {
		t.Errorf("MinLines = %v, want default 20", cfg.MinLines)
	}
}
