package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/vdisk/vdisk"
	"github.com/vdisk/vdisk/filesystem/toyfs"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "VDISK"
	appName      = "vdisk"
)

type Config struct {
	DiskFile                string `envconfig:"DISK_FILE"                  yaml:"diskFile"`
	Size                    int64  `envconfig:"SIZE"                       yaml:"size"`
	BlockSize               int64  `envconfig:"BLOCK_SIZE"                 yaml:"blockSize"`
	DirectBlocks            int    `envconfig:"DIRECT_BLOCKS"              yaml:"directBlocks"`
	VolumeName              string `envconfig:"VOLUME_NAME"                yaml:"volumeName"`
	LogLevel                string `envconfig:"LOG_LEVEL"                  yaml:"logLevel"`
	StrictTrailingSlash     bool   `envconfig:"STRICT_TRAILING_SLASH"      yaml:"strictTrailingSlash"`
	AllowSameDirectoryLinks bool   `envconfig:"ALLOW_SAME_DIRECTORY_LINKS" yaml:"allowSameDirectoryLinks"`
}

// DefaultConfig the configuration before any file, environment or flag is applied
func DefaultConfig() Config {
	return Config{
		DiskFile:     "vdisk.img",
		Size:         vdisk.DefaultSize,
		BlockSize:    toyfs.DefaultBlockSize,
		DirectBlocks: toyfs.DefaultDirectBlocks,
		VolumeName:   toyfs.DefaultVolumeName,
		LogLevel:     logrus.WarnLevel.String(),
	}
}

// defaultConfigFile where the config file is looked for when none is given
func defaultConfigFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName+".yaml")
	}
	return ""
}

// LoadConfig reads the config file, if there is one, then applies the VDISK_*
// environment variables on top. An empty configFile falls back to
// $VDISK_CONFIG_FILE and then the user config directory; only an explicitly named
// file has to exist.
func LoadConfig(configFile string) (*Config, error) {
	required := configFile != ""
	if configFile == "" {
		configFile = os.Getenv(envVarPrefix + "_CONFIG_FILE")
		required = configFile != ""
	}
	if configFile == "" {
		configFile = defaultConfigFile()
	}

	c := DefaultConfig()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		switch {
		case err == nil:
			if err := yaml.UnmarshalStrict(data, &c); err != nil {
				return nil, fmt.Errorf("unmarshaling config file: %w", err)
			}
		case required || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if y, e := func() (string, string) {
		if c.DiskFile == "" {
			return "diskFile", "DISK_FILE"
		}
		if c.VolumeName == "" {
			return "volumeName", "VOLUME_NAME"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf(
			"missing required configuration: %s / %s_%s",
			y,
			envVarPrefix,
			e,
		)
	}
	switch {
	case c.BlockSize <= 0:
		return fmt.Errorf("block size must be positive, not %d", c.BlockSize)
	case c.Size <= 0:
		return fmt.Errorf("disk size must be positive, not %d", c.Size)
	case c.Size%c.BlockSize != 0:
		return fmt.Errorf("disk size %d is not a multiple of the block size %d", c.Size, c.BlockSize)
	case c.DirectBlocks <= 0:
		return fmt.Errorf("direct blocks must be positive, not %d", c.DirectBlocks)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// NewLogger builds the logger described by the configuration, writing to w
func (c *Config) NewLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// Params the filesystem parameters. The volume name is used as a slug.
func (c *Config) Params(logger *logrus.Logger) *toyfs.Params {
	return &toyfs.Params{
		BlockSize:               c.BlockSize,
		DirectBlocks:            c.DirectBlocks,
		VolumeName:              slug.Make(c.VolumeName),
		Logger:                  logger,
		StrictTrailingSlash:     c.StrictTrailingSlash,
		AllowSameDirectoryLinks: c.AllowSameDirectoryLinks,
	}
}
