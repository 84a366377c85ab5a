package game

import (
	"fmt"
	"strings"

	"laptudirm.com/x/kibitz/pkg/clock"
	"laptudirm.com/x/kibitz/pkg/rules"
)

// Mode selects who plays the side the computer can take over.
type Mode int

const (
	HumanVsHuman Mode = iota
	HumanVsAI
)

func (mode Mode) String() string {
	if mode == HumanVsAI {
		return "Human vs AI"
	}

	return "Human vs Human"
}

// ParseMode parses a mode as written in the configuration: "human" or "ai".
func ParseMode(str string) (Mode, error) {
	switch strings.ToLower(str) {
	case "human", "human-vs-human":
		return HumanVsHuman, nil
	case "ai", "human-vs-ai":
		return HumanVsAI, nil
	default:
		return HumanVsHuman, fmt.Errorf("game: unknown mode %q", str)
	}
}

// Settings are the choices made before a game starts.
type Settings struct {
	Mode   Mode
	AISide rules.Side

	// Presets are cycled through in order, starting at Preset.
	Presets []clock.TimeControl
	Preset  int
}

// DefaultSettings returns a human vs human game with the computer set to
// play Black once enabled, and a five minute clock.
func DefaultSettings() Settings {
	return Settings{
		Mode:    HumanVsHuman,
		AISide:  rules.Black,
		Presets: clock.DefaultPresets,
		Preset:  0,
	}
}

// TimeControl returns the selected time control.
func (settings Settings) TimeControl() clock.TimeControl {
	return settings.Presets[settings.Preset]
}
