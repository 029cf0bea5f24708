package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/oisee/regvm/pkg/cpu"
)

// Config is the optional regvm.toml file. Command-line flags override it.
type Config struct {
	Machine  MachineConfig  `toml:"machine"`
	Log      LogConfig      `toml:"log"`
	Terminal TerminalConfig `toml:"terminal"`
}

// MachineConfig sizes every machine the binary creates.
type MachineConfig struct {
	Stack    int    `toml:"stack"`
	MaxSteps uint64 `toml:"max-steps"`
}

// LogConfig configures commonlog. Verbosity 0 logs errors only; each level
// above adds warnings, notices, info and debug.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// TerminalConfig controls stdin handling when it is a terminal.
type TerminalConfig struct {
	Raw bool `toml:"raw"`
}

func defaultConfig() Config {
	return Config{
		Machine: MachineConfig{Stack: cpu.DefaultStackCapacity},
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Machine.Stack <= 0 {
		return cfg, fmt.Errorf("%s: machine.stack must be positive", path)
	}
	return cfg, nil
}

// machineOptions turns the machine section into cpu options.
func (c Config) machineOptions() []cpu.Option {
	opts := []cpu.Option{cpu.StackCapacity(c.Machine.Stack)}
	if c.Machine.MaxSteps > 0 {
		opts = append(opts, cpu.MaxSteps(c.Machine.MaxSteps))
	}
	return opts
}
