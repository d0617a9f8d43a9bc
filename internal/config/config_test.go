package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsourceai/edi-mapper/internal/edi"
)

func TestLoadMainConfig_Defaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./configs", cfg.ConfigsDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "{partner}_{timestamp}_{uuid}.edi", cfg.OutputNameFormat)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.True(t, cfg.ContinueOnError)
	assert.Equal(t, 1, cfg.ControlNumberSeed)
}

func TestLoadMainConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `input_dir: /data/in
output_dir: /data/out
log_level: debug
max_concurrency: 8
control_number_seed: 1057
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, 1057, cfg.ControlNumberSeed)
	// Unset keys keep their defaults.
	assert.Equal(t, "./input_archive", cfg.InputArchiveDir)
}

func TestLoadMainConfig_EnvOverride(t *testing.T) {
	t.Setenv("EDI_INPUT_DIR", "/env/in")
	t.Setenv("EDI_MAX_CONCURRENCY", "2")

	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/env/in", cfg.InputDir)
	assert.Equal(t, 2, cfg.MaxConcurrency)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero concurrency", content: "max_concurrency: 0\n"},
		{name: "negative seed", content: "control_number_seed: -1\n"},
		{name: "bad log level", content: "log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadMainConfig(path)
			assert.Error(t, err)
		})
	}
}

func writePartnerConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const canPartnerYAML = `partner_name: Canada DC
partner_code: CAN
file_matching_patterns:
  - "can_*.txt"
dialect: synapse
sender_id: DCG
receiver_id: "9083514477"
warehouse_code: LYN
ship_to_code: CAN
placeholders:
  id: NA
`

func TestLoadPartnerConfig(t *testing.T) {
	path := writePartnerConfig(t, t.TempDir(), "can.yaml", canPartnerYAML)

	cfg, err := LoadPartnerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "CAN", cfg.PartnerCode)
	assert.Equal(t, edi.DialectSynapse, cfg.ParsedDialect())
	assert.Equal(t, "DCG", cfg.SenderID)
	assert.Equal(t, "LYN", cfg.WarehouseCode)

	t.Run("parser settings default", func(t *testing.T) {
		assert.Equal(t, "|", cfg.ParserSettings.Delimiter)
		assert.Equal(t, "HDR", cfg.ParserSettings.HeaderTag)
		assert.Equal(t, "DTL", cfg.ParserSettings.DetailTag)
	})

	t.Run("placeholder overrides resolve", func(t *testing.T) {
		opts := cfg.EncodeOptions()
		assert.Equal(t, "NA", opts.PlaceholderID)
		assert.Equal(t, "EA", opts.DefaultUnit)
		assert.Equal(t, "F", opts.DefaultReportType)
	})
}

func TestLoadPartnerConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing sender",
			content: "partner_code: X\nreceiver_id: \"1\"\n",
			wantErr: "sender_id is required",
		},
		{
			name:    "missing receiver",
			content: "partner_code: X\nsender_id: DCG\n",
			wantErr: "receiver_id is required",
		},
		{
			name:    "unknown dialect",
			content: "sender_id: DCG\nreceiver_id: \"1\"\ndialect: fancy\n",
			wantErr: "unknown dialect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePartnerConfig(t, t.TempDir(), "bad.yaml", tt.content)

			_, err := LoadPartnerConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPartnerConfigs(t *testing.T) {
	dir := t.TempDir()
	writePartnerConfig(t, dir, "can.yaml", canPartnerYAML)
	writePartnerConfig(t, dir, "usa.yml", `partner_name: US DC
partner_code: USA
file_matching_patterns:
  - "usa_*.txt"
sender_id: DCG
receiver_id: "5551234567"
`)
	writePartnerConfig(t, dir, "notes.txt", "not a config")

	configs, err := LoadPartnerConfigs(dir)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Contains(t, configs, "CAN")
	assert.Contains(t, configs, "USA")
	assert.Equal(t, edi.DialectStandard, configs["USA"].ParsedDialect())
}

func TestLoadPartnerConfigs_EmptyDir(t *testing.T) {
	configs, err := LoadPartnerConfigs(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestFindMatchingPartner(t *testing.T) {
	configs := map[string]*PartnerConfig{
		"CAN": {PartnerCode: "CAN", FileMatchingPatterns: []string{"can_*.txt"}},
		"USA": {PartnerCode: "USA", FileMatchingPatterns: []string{"usa_*.txt", "*.usa"}},
	}

	t.Run("matches by base name", func(t *testing.T) {
		cfg := FindMatchingPartner("/data/in/can_20250303.txt", configs)
		require.NotNil(t, cfg)
		assert.Equal(t, "CAN", cfg.PartnerCode)
	})

	t.Run("second pattern matches", func(t *testing.T) {
		cfg := FindMatchingPartner("receipt.usa", configs)
		require.NotNil(t, cfg)
		assert.Equal(t, "USA", cfg.PartnerCode)
	})

	t.Run("no match returns nil", func(t *testing.T) {
		assert.Nil(t, FindMatchingPartner("mystery.dat", configs))
	})
}
