// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"laptudirm.com/x/kibitz/pkg/clock"
	"laptudirm.com/x/kibitz/pkg/common"
	"laptudirm.com/x/kibitz/pkg/engine"
	"laptudirm.com/x/kibitz/pkg/game"
	"laptudirm.com/x/kibitz/pkg/rules"
)

//go:embed config.yaml
var BaseConfigFile []byte

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Rules    string `yaml:"rules"`
	StartFEN string `yaml:"start-fen,omitempty"`

	Mode   string `yaml:"mode"`
	AISide string `yaml:"ai-side"`

	TimeControls []string `yaml:"time-controls"`
	TimeControl  int      `yaml:"time-control"`

	AIDelay time.Duration `yaml:"ai-delay"`
	Tick    time.Duration `yaml:"tick"`

	// Seed for the fallback move selector, random if zero.
	Seed int64 `yaml:"seed,omitempty"`

	Engine engine.EngineConfig `yaml:"engine"`
}

// Default returns the configuration written on first use.
func Default() Config {
	var config Config
	if err := yaml.Unmarshal(BaseConfigFile, &config); err != nil {
		panic(fmt.Sprintf("config: embedded configuration: %v", err))
	}

	return config
}

// Load reads the configuration at path. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("config: %s: %w", path, err)
	}

	return config, config.Validate()
}

// LoadDefault loads the configuration from the user's config directory,
// creating it with the defaults if it doesn't exist.
func LoadDefault() (Config, error) {
	if err := common.TryMkdir(common.Directory); err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}

	if err := common.TryCreate(common.ConfigFile, BaseConfigFile); err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}

	return Load(common.ConfigFile)
}

// Validate checks every field which can't be checked by the yaml decoder.
func (config Config) Validate() error {
	if config.Rules != "chess" && config.Rules != "mess" {
		return fmt.Errorf("%w: unknown rules backend %q", ErrInvalid, config.Rules)
	}

	if _, err := game.ParseMode(config.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if _, err := rules.ParseSide(config.AISide); err != nil {
		return fmt.Errorf("%w: ai-side: %v", ErrInvalid, err)
	}

	presets, err := clock.ParsePresets(config.TimeControls)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if len(presets) == 0 {
		return fmt.Errorf("%w: no time controls", ErrInvalid)
	}

	if config.TimeControl < 0 || config.TimeControl >= len(presets) {
		return fmt.Errorf("%w: time-control %d out of range", ErrInvalid, config.TimeControl)
	}

	if config.AIDelay < 0 || config.Tick < 0 || config.Engine.MoveTime < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}

	return nil
}

// Settings returns the game settings selected by the configuration, which
// must be valid.
func (config Config) Settings() (game.Settings, error) {
	if err := config.Validate(); err != nil {
		return game.Settings{}, err
	}

	mode, _ := game.ParseMode(config.Mode)
	side, _ := rules.ParseSide(config.AISide)
	presets, _ := clock.ParsePresets(config.TimeControls)

	return game.Settings{
		Mode:    mode,
		AISide:  side,
		Presets: presets,
		Preset:  config.TimeControl,
	}, nil
}

// Oracle returns the configured rules backend.
func (config Config) Oracle() (rules.Oracle, error) {
	return rules.GetOracle(config.Rules, config.StartFEN)
}

// Dump encodes the configuration as yaml.
func (config Config) Dump() ([]byte, error) {
	return yaml.Marshal(config)
}
