package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	litetableDir   = ".litetable"
	configFileName = "litetable-mapper.conf"

	defaultServerAddress = "127.0.0.1"
	defaultServerPort    = 9443
	defaultCDCAddress    = "127.0.0.1"
	defaultCDCPort       = 32473
)

type Config struct {
	ServerAddress string
	ServerPort    int
	CDCAddress    string
	CDCPort       int

	ShardCount  int
	MaxVersions int
	Families    []string
	// Backup persists the store under Dir between runs.
	Backup bool
	Debug  bool

	// Dir is the LiteTable directory the file was read from.
	Dir string
}

// Dir returns the LiteTable directory in the user's home directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, litetableDir), nil
}

// NewConfig reads litetable-mapper.conf from the LiteTable directory. A missing file yields the
// defaults.
func NewConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get LiteTable directory: %w", err)
	}

	file, err := os.Open(filepath.Join(dir, configFileName))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		cfg := defaults()
		cfg.Dir = dir
		return cfg, nil
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, err
	}
	cfg.Dir = dir
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerAddress: defaultServerAddress,
		ServerPort:    defaultServerPort,
		CDCAddress:    defaultCDCAddress,
		CDCPort:       defaultCDCPort,
	}
}

// Parse reads key=value lines. Blank lines and lines starting with # are skipped, as are
// unknown keys.
func Parse(r io.Reader) (*Config, error) {
	config := defaults()
	scanner := bufio.NewScanner(r)

	var errGrp []error
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		var err error
		switch key {
		case "server_address":
			config.ServerAddress = value
		case "server_port":
			config.ServerPort, err = port(value)
		case "cdc_address":
			config.CDCAddress = value
		case "cdc_port":
			config.CDCPort, err = port(value)
		case "shard_count":
			config.ShardCount, err = strconv.Atoi(value)
		case "max_versions":
			config.MaxVersions, err = strconv.Atoi(value)
		case "families":
			config.Families = nil
			for _, f := range strings.Split(value, ",") {
				if f = strings.TrimSpace(f); f != "" {
					config.Families = append(config.Families, f)
				}
			}
		case "backup":
			config.Backup, err = strconv.ParseBool(value)
		case "debug":
			config.Debug = value == "true"
		}
		if err != nil {
			errGrp = append(errGrp, fmt.Errorf("invalid %s value: %w", key, err))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := errors.Join(errGrp...); err != nil {
		return nil, err
	}
	return config, nil
}

func port(value string) (int, error) {
	p, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if p <= 0 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}
