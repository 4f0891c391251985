// Package config loads govgen.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/rpc"
	"gopkg.in/yaml.v3"
)

const FileName = "govgen.yaml"

type Config struct {
	Analysis Analysis `yaml:"analysis"`
	Codegen  Codegen  `yaml:"codegen"`
	RPC      RPC      `yaml:"rpc"`
	Server   Server   `yaml:"server"`
	Watch    Watch    `yaml:"watch"`
}

type Analysis struct {
	Mode              string   `yaml:"mode"`
	MaxParams         int      `yaml:"max_params"`
	Keywords          []string `yaml:"keywords"`
	MutatingCalls     []string `yaml:"mutating_calls"`
	CapabilityMarkers []string `yaml:"capability_markers"`
	GovernanceMarkers []string `yaml:"governance_markers"`
	GetterPrefixes    []string `yaml:"getter_prefixes"`
}

type Codegen struct {
	Output       string `yaml:"output"`
	Filename     string `yaml:"filename"`
	ModuleSuffix string `yaml:"module_suffix"`
}

type RPC struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
	Exclude  []string      `yaml:"exclude"`
}

func Default() *Config {
	vocab := classifier.DefaultVocabulary()
	return &Config{
		Analysis: Analysis{
			Mode:              string(classifier.ModeStrict),
			MaxParams:         vocab.MaxParams,
			Keywords:          vocab.Keywords,
			MutatingCalls:     vocab.MutatingCalls,
			CapabilityMarkers: vocab.CapabilityMarkers,
			GovernanceMarkers: vocab.GovernanceMarkers,
			GetterPrefixes:    vocab.GetterPrefixes,
		},
		Codegen: Codegen{
			Output:       "governance",
			Filename:     "generated_governance.move",
			ModuleSuffix: "_governance",
		},
		RPC: RPC{
			URL:     rpc.DefaultURL,
			Timeout: rpc.DefaultTimeout,
		},
		Server: Server{
			Host: "localhost",
			Port: 8080,
		},
		Watch: Watch{
			Debounce: 300 * time.Millisecond,
			Exclude:  []string{"build"},
		},
	}
}

// Load reads path, or govgen.yaml in the working directory when path is
// empty. A missing default file yields Default(); a missing explicit path is
// an error. Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working dir: %w", err)
		}
		path = filepath.Join(wd, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logger.Debug("No config file found, using default config")
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Config file found: %s", path)
	logger.Debug("Config: %+v", *cfg)
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := classifier.ParseMode(c.Analysis.Mode); err != nil {
		return fmt.Errorf("analysis.mode: %w", err)
	}
	if err := c.Vocabulary().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if c.Codegen.Filename == "" {
		return errors.New("codegen.filename must not be empty")
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive, got %s", c.RPC.Timeout)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

func (c *Config) Mode() classifier.Mode {
	mode, err := classifier.ParseMode(c.Analysis.Mode)
	if err != nil {
		return classifier.ModeStrict
	}
	return mode
}

func (c *Config) Vocabulary() classifier.Vocabulary {
	return classifier.Vocabulary{
		Keywords:          c.Analysis.Keywords,
		MutatingCalls:     c.Analysis.MutatingCalls,
		CapabilityMarkers: c.Analysis.CapabilityMarkers,
		GovernanceMarkers: c.Analysis.GovernanceMarkers,
		GetterPrefixes:    c.Analysis.GetterPrefixes,
		MaxParams:         c.Analysis.MaxParams,
	}
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
