// Copyright 2026 Arroyo Network
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ApiListenAddress string `yaml:"apiListenAddress"                                   split_words:"true"`
	BindAddr         string `yaml:"bindAddr"                                           split_words:"true"`
	ArchiveDir       string `yaml:"archiveDir"       envconfig:"ARROYO_ARCHIVE_DIR"`
	ShutdownTimeout  string `yaml:"shutdownTimeout"                                    split_words:"true"`
	MaxWaitTimeout   string `yaml:"maxWaitTimeout"                                     split_words:"true"`
	MaxLogEvents     int    `yaml:"maxLogEvents"     envconfig:"ARROYO_MAX_LOG_EVENTS"`
	MaxHeightSpan    uint64 `yaml:"maxHeightSpan"    envconfig:"ARROYO_MAX_HEIGHT_SPAN"`
	MetricsPort      uint   `yaml:"metricsPort"                                        split_words:"true"`
}

var globalConfig = &Config{
	ApiListenAddress: "0.0.0.0:8090",
	BindAddr:         "0.0.0.0",
	ArchiveDir:       "",
	ShutdownTimeout:  "30s",
	MaxWaitTimeout:   "30s",
	MaxLogEvents:     50000,
	MaxHeightSpan:    1000,
	MetricsPort:      12799,
}

// LoadConfig loads the node configuration: defaults, overlaid with the
// YAML config file (explicit path, then ~/.arroyo/arroyo.yaml, then
// /etc/arroyo/arroyo.yaml), overlaid with environment variables.
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		// Check for config file in this path: ~/.arroyo/arroyo.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".arroyo", "arroyo.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/arroyo/arroyo.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/arroyo/arroyo.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Overlay environment variables. Fields without an explicit
	// envconfig annotation use ARROYO_<SPLIT_WORDS> names.
	if err := envconfig.Process("arroyo", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
