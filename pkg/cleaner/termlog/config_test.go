package termlog

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	tests := []struct {
		name     string
		got      bool
		expected bool
	}{
		{"StripEscapes", cfg.StripEscapes, true},
		{"StripTitles", cfg.StripTitles, true},
		{"StripBoxDrawing", cfg.StripBoxDrawing, true},
		{"CollapseDuplicates", cfg.CollapseDuplicates, true},
		{"RemoveBlankLines", cfg.RemoveBlankLines, true},
		{"TrimTrailing", cfg.TrimTrailing, true},
		{"CompressBlankRuns", cfg.CompressBlankRuns, true},
		{"TrimOuter", cfg.TrimOuter, true},
		{"Converge", cfg.Converge, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, tt.got)
			}
		})
	}

	if len(cfg.RemovePatterns) != 0 {
		t.Errorf("expected no default remove patterns, got %v", cfg.RemovePatterns)
	}
}

func TestPresetMinimal(t *testing.T) {
	cfg := PresetMinimal()

	if !cfg.StripEscapes || !cfg.StripTitles || !cfg.TrimOuter {
		t.Error("expected minimal preset to strip escapes and titles and trim")
	}
	if cfg.StripBoxDrawing || cfg.CollapseDuplicates || cfg.RemoveBlankLines || cfg.CompressBlankRuns {
		t.Error("expected minimal preset to keep line structure")
	}
}

func TestPresetAggressive(t *testing.T) {
	cfg := PresetAggressive()

	if !cfg.StripBoxDrawing || !cfg.CollapseDuplicates {
		t.Error("expected aggressive preset to include the default stages")
	}
	if len(cfg.RemovePatterns) != 1 || cfg.RemovePatterns[0] != spinnerPattern {
		t.Errorf("expected spinner pattern, got %v", cfg.RemovePatterns)
	}

	// Must not share the pattern slice with later defaults.
	if len(DefaultConfig().RemovePatterns) != 0 {
		t.Error("aggressive preset leaked into default config")
	}
}

func TestPreset(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
		check   func(*Config) bool
	}{
		{"", false, func(c *Config) bool { return c.StripBoxDrawing }},
		{"default", false, func(c *Config) bool { return c.StripBoxDrawing }},
		{"minimal", false, func(c *Config) bool { return !c.StripBoxDrawing }},
		{"aggressive", false, func(c *Config) bool { return len(c.RemovePatterns) == 1 }},
		{"bogus", true, nil},
	}

	for _, tt := range tests {
		t.Run("preset_"+tt.name, func(t *testing.T) {
			cfg, err := Preset(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), "unknown preset") {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Preset() error = %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid patterns", func(t *testing.T) {
		cfg := &Config{RemovePatterns: []string{`^\s+$`, "foo|bar"}}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("reports every invalid pattern", func(t *testing.T) {
		cfg := &Config{RemovePatterns: []string{"(", "ok", "[z-a]"}}
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		msg := err.Error()
		if !strings.Contains(msg, `"("`) || !strings.Contains(msg, `"[z-a]"`) {
			t.Errorf("expected both patterns in error, got %q", msg)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	t.Run("nil other returns receiver", func(t *testing.T) {
		cfg := PresetMinimal()
		if cfg.Merge(nil) != cfg {
			t.Error("expected same config back")
		}
	})

	t.Run("enables stages from other", func(t *testing.T) {
		merged := PresetMinimal().Merge(&Config{CollapseDuplicates: true})
		if !merged.CollapseDuplicates {
			t.Error("expected CollapseDuplicates enabled")
		}
		if !merged.StripEscapes {
			t.Error("expected StripEscapes kept")
		}
	})

	t.Run("appends patterns without duplicates", func(t *testing.T) {
		base := &Config{RemovePatterns: []string{"a", "b"}}
		merged := base.Merge(&Config{RemovePatterns: []string{"b", "c"}})
		if got := strings.Join(merged.RemovePatterns, ","); got != "a,b,c" {
			t.Errorf("expected a,b,c got %s", got)
		}
		if len(base.RemovePatterns) != 2 {
			t.Error("merge modified the receiver")
		}
	})
}
