package rotacl

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, "rotacl-assignments", cfg.AssignmentBucket)
	require.Equal(t, 10*time.Second, cfg.OperationTimeout)
	require.Equal(t, 0, cfg.ACLWorkers)
	require.Equal(t, "rotacl-lock", cfg.Lock.Bucket)
	require.Equal(t, "rotations", cfg.Lock.Key)
	require.Equal(t, 30*time.Second, cfg.Lock.TTL)
	require.Equal(t, 500*time.Millisecond, cfg.Lock.PollInterval)
	require.Zero(t, cfg.Lock.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			AssignmentBucket: "custom",
			ACLWorkers:       4,
			Lock:             LockConfig{TTL: time.Minute, Timeout: 5 * time.Second},
		}
		SetDefaults(&cfg)

		require.Equal(t, "custom", cfg.AssignmentBucket)
		require.Equal(t, 4, cfg.ACLWorkers)
		require.Equal(t, time.Minute, cfg.Lock.TTL)
		require.Equal(t, 5*time.Second, cfg.Lock.Timeout)
		require.Equal(t, "rotacl-lock", cfg.Lock.Bucket)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "default is valid", modify: func(*Config) {}},
		{name: "test config is valid", modify: func(c *Config) { *c = TestConfig() }},
		{name: "missing assignment bucket", modify: func(c *Config) { c.AssignmentBucket = "" }, errMsg: "AssignmentBucket"},
		{name: "missing lock key", modify: func(c *Config) { c.Lock.Key = "" }, errMsg: "Lock.Key"},
		{name: "short lock TTL", modify: func(c *Config) { c.Lock.TTL = 500 * time.Millisecond }, errMsg: "Lock.TTL"},
		{name: "zero poll interval", modify: func(c *Config) { c.Lock.PollInterval = 0 }, errMsg: "PollInterval"},
		{
			name:   "poll interval too long for TTL",
			modify: func(c *Config) { c.Lock.TTL = 3 * time.Second; c.Lock.PollInterval = 2 * time.Second },
			errMsg: "3*Lock.PollInterval",
		},
		{name: "negative lock timeout", modify: func(c *Config) { c.Lock.Timeout = -time.Second }, errMsg: "Lock.Timeout"},
		{name: "zero operation timeout", modify: func(c *Config) { c.OperationTimeout = 0 }, errMsg: "OperationTimeout"},
		{name: "negative workers", modify: func(c *Config) { c.ACLWorkers = -1 }, errMsg: "ACLWorkers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any) {}
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Fatal(string, ...any) {}

func TestConfig_ValidateWithWarnings(t *testing.T) {
	t.Run("defaults produce no warnings", func(t *testing.T) {
		logger := &recordingLogger{}
		cfg := DefaultConfig()
		cfg.ValidateWithWarnings(logger)
		require.Empty(t, logger.warnings)
	})

	t.Run("lock timeout below TTL", func(t *testing.T) {
		logger := &recordingLogger{}
		cfg := DefaultConfig()
		cfg.Lock.Timeout = time.Second
		cfg.ValidateWithWarnings(logger)
		require.Len(t, logger.warnings, 1)
		require.Contains(t, logger.warnings[0], "Lock.Timeout")
	})

	t.Run("operation timeout above TTL", func(t *testing.T) {
		logger := &recordingLogger{}
		cfg := DefaultConfig()
		cfg.OperationTimeout = time.Minute
		cfg.ValidateWithWarnings(logger)
		require.Len(t, logger.warnings, 1)
		require.Contains(t, logger.warnings[0], "OperationTimeout")
	})
}

func TestConfig_YAML(t *testing.T) {
	yamlConfig := `
rotationsFile: /etc/rotacl/rotations.yaml
assignmentBucket: prod-assignments
operationTimeout: 15s
aclWorkers: 8
lock:
  bucket: prod-lock
  key: global
  ttl: 1m
  pollInterval: 1s
  timeout: 2m
`

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(yamlConfig), &cfg))

	require.Equal(t, "/etc/rotacl/rotations.yaml", cfg.RotationsFile)
	require.Equal(t, "prod-assignments", cfg.AssignmentBucket)
	require.Equal(t, 15*time.Second, cfg.OperationTimeout)
	require.Equal(t, 8, cfg.ACLWorkers)
	require.Equal(t, "prod-lock", cfg.Lock.Bucket)
	require.Equal(t, "global", cfg.Lock.Key)
	require.Equal(t, time.Minute, cfg.Lock.TTL)
	require.Equal(t, time.Second, cfg.Lock.PollInterval)
	require.Equal(t, 2*time.Minute, cfg.Lock.Timeout)
}

func TestLoadConfig(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "rotacl.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		return path
	}

	t.Run("partial file gets defaults", func(t *testing.T) {
		cfg, err := LoadConfig(write(t, "lock:\n  timeout: 45s\n"))
		require.NoError(t, err)

		require.Equal(t, 45*time.Second, cfg.Lock.Timeout)
		require.Equal(t, 30*time.Second, cfg.Lock.TTL)
		require.Equal(t, "rotacl-assignments", cfg.AssignmentBucket)
	})

	t.Run("empty file gets defaults", func(t *testing.T) {
		cfg, err := LoadConfig(write(t, ""))
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadConfig(write(t, "lockTtl: 30s\n"))
		require.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(write(t, "lock:\n  ttl: 100ms\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
