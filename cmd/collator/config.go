// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	_ "embed"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/collator/cmd/collator/node"
	"github.com/vechain/collator/staker"
)

//go:embed devnet.yaml
var devnetConfig []byte

// Config is the content of the config file.
type Config struct {
	Params        staker.Params  `yaml:"params"`
	Staker        staker.Genesis `yaml:"staker"`
	Genesis       node.Genesis   `yaml:"genesis"`
	SessionLength uint32         `yaml:"session-length"`
	BlockInterval time.Duration  `yaml:"block-interval"`
	BlockReward   uint64         `yaml:"block-reward"`
	TickBudget    uint64         `yaml:"tick-budget"`
}

func defaultConfig() Config {
	return Config{
		Params:        staker.DefaultParams(),
		SessionLength: 10,
		BlockInterval: 6 * time.Second,
		BlockReward:   10,
		TickBudget:    1_000_000,
	}
}

// parseConfig decodes data over the defaults. Unknown keys are rejected.
func parseConfig(data []byte) (*Config, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, errors.Wrap(err, "params")
	}
	if err := cfg.Staker.Validate(cfg.Params); err != nil {
		return nil, errors.Wrap(err, "staker genesis")
	}
	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadConfig(path string) (*Config, error) {
	if path == "" {
		return parseConfig(devnetConfig)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return parseConfig(data)
}

func (c *Config) nodeOptions() node.Options {
	return node.Options{
		BlockInterval: c.BlockInterval,
		SessionLength: c.SessionLength,
		BlockReward:   c.BlockReward,
		TickBudget:    c.TickBudget,
	}
}
