package config

import (
	"os"
	"time"

	"github.com/squarefactory/lsf-submit/scheduler"
	"gopkg.in/yaml.v3"
)

const DefaultListenAddress = ":8080"

type Config struct {
	Scheduler     Scheduler          `yaml:"scheduler"`
	Options       *scheduler.Options `yaml:"options"`
	ListenAddress string             `yaml:"listen_address"`
}

type Scheduler struct {
	// Binary is the bsub executable, looked up in PATH when not absolute.
	Binary string `yaml:"binary"`
	// User is a UNIX User used for impersonation.
	User string `yaml:"user"`
	// Timeout in seconds for one submission. Zero disables it.
	Timeout int `yaml:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scheduler: Scheduler{
			Binary: scheduler.DefaultBinary,
		},
		ListenAddress: DefaultListenAddress,
	}
}

// Load reads a YAML config from path. An empty path yields Default().
// LISTEN_ADDRESS, when set, overrides listen_address.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		cb, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(cb, cfg); err != nil {
			return nil, err
		}
	}
	if listenAddress := os.Getenv("LISTEN_ADDRESS"); len(listenAddress) > 0 {
		cfg.ListenAddress = listenAddress
	}
	if cfg.Scheduler.Binary == "" {
		cfg.Scheduler.Binary = scheduler.DefaultBinary
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return cfg, nil
}

// SubmitTimeout returns the per-submission timeout, zero when disabled.
func (c *Config) SubmitTimeout() time.Duration {
	if c.Scheduler.Timeout <= 0 {
		return 0
	}
	return time.Duration(c.Scheduler.Timeout) * time.Second
}

// NewLSF builds a client from the configuration.
func (c *Config) NewLSF(executor scheduler.Executor) *scheduler.LSF {
	return scheduler.NewLSF(
		executor,
		c.Options,
		scheduler.WithBinary(c.Scheduler.Binary),
		scheduler.WithUser(c.Scheduler.User),
	)
}
