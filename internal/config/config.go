// Package config resolves CLI settings from ~/.pnr/config.toml and PNR_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".pnr"
	envPrefix  = "PNR"

	KeyRecordsPath     = "records.path"
	KeyRefreshInterval = "refresh.interval"
	KeyWaitTimeout     = "wait.timeout"
	KeyMessagesSource  = "messages.source"
	KeyNATSURL         = "messages.nats.url"
	KeyNATSSubject     = "messages.nats.subject"
	KeyInboxDir        = "messages.inbox.dir"
	KeyPermissionMode  = "permission.mode"
	KeyLogLevel        = "log.level"
	KeyLogFile         = "log.file"
	KeyMetricsAddr     = "metrics.addr"
)

type SourceKind string

const (
	SourceNone  SourceKind = "none"
	SourceNATS  SourceKind = "nats"
	SourceInbox SourceKind = "inbox"
)

type Config struct {
	RecordsPath     string
	RefreshInterval time.Duration
	WaitTimeout     time.Duration
	Source          SourceKind
	NATSURL         string
	NATSSubject     string
	InboxDir        string
	PermissionMode  string
	LogLevel        string
	LogFile         string
	MetricsAddr     string
}

// Load registers defaults on cfg, reads the config file if present and
// returns the resolved settings. cfg keeps the merged view so adapters can
// read their own keys from it.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(baseDir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(KeyRecordsPath, "")
	cfg.SetDefault(KeyRefreshInterval, time.Second)
	cfg.SetDefault(KeyWaitTimeout, 10*time.Second)
	cfg.SetDefault(KeyMessagesSource, string(SourceNone))
	cfg.SetDefault(KeyNATSURL, "nats://127.0.0.1:4222")
	cfg.SetDefault(KeyNATSSubject, "pnr.messages")
	cfg.SetDefault(KeyInboxDir, filepath.Join(baseDir, "inbox"))
	cfg.SetDefault(KeyPermissionMode, "grant")
	cfg.SetDefault(KeyLogLevel, "info")
	cfg.SetDefault(KeyLogFile, "")
	cfg.SetDefault(KeyMetricsAddr, "")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	out := Config{
		RecordsPath:     cfg.GetString(KeyRecordsPath),
		RefreshInterval: cfg.GetDuration(KeyRefreshInterval),
		WaitTimeout:     cfg.GetDuration(KeyWaitTimeout),
		Source:          SourceKind(strings.ToLower(cfg.GetString(KeyMessagesSource))),
		NATSURL:         cfg.GetString(KeyNATSURL),
		NATSSubject:     cfg.GetString(KeyNATSSubject),
		InboxDir:        cfg.GetString(KeyInboxDir),
		PermissionMode:  strings.ToLower(cfg.GetString(KeyPermissionMode)),
		LogLevel:        cfg.GetString(KeyLogLevel),
		LogFile:         cfg.GetString(KeyLogFile),
		MetricsAddr:     cfg.GetString(KeyMetricsAddr),
	}
	if err := out.validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

func (c Config) validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyRefreshInterval, c.RefreshInterval)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyWaitTimeout, c.WaitTimeout)
	}
	switch c.Source {
	case SourceNone, SourceNATS, SourceInbox:
	default:
		return fmt.Errorf("unsupported %s %q", KeyMessagesSource, c.Source)
	}
	switch c.PermissionMode {
	case "grant", "deny", "prompt":
	default:
		return fmt.Errorf("unsupported %s %q", KeyPermissionMode, c.PermissionMode)
	}
	return nil
}
