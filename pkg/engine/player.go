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

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/kibitz/pkg/rules"
)

// ErrUnavailable is wrapped by every error returned from a move request
// which the engine could not answer.
var ErrUnavailable = errors.New("engine: unavailable")

// Mover chooses moves for the computer side.
type Mover interface {
	RequestMove(ctx context.Context, pos rules.Position, budget time.Duration) (rules.Move, error)
}

// Player is a Mover backed by a UCI engine process. The process is started
// on the first request and restarted on the request after a failure.
type Player struct {
	config EngineConfig
	oracle rules.Oracle

	// replaced in tests
	start func(EngineConfig) (*Engine, error)

	mu     sync.Mutex
	engine *Engine
}

var _ Mover = (*Player)(nil)

// NewPlayer returns a Player for the given engine. Replies are checked for
// legality with the given oracle.
func NewPlayer(config EngineConfig, oracle rules.Oracle) *Player {
	return &Player{
		config: config,
		oracle: oracle,
		start:  StartEngine,
	}
}

// RequestMove asks the engine for a move in pos, searching for budget. The
// Player is locked for the whole search, so Running and Close wait for it
// to finish: cancel ctx before closing a Player with a request in flight.
func (player *Player) RequestMove(ctx context.Context, pos rules.Position, budget time.Duration) (rules.Move, error) {
	player.mu.Lock()
	defer player.mu.Unlock()

	if player.config.Cmd == "" {
		return rules.NullMove, fmt.Errorf("%w: no engine configured", ErrUnavailable)
	}

	if player.engine == nil {
		logrus.Debugf("engine: starting %s", player.config.Cmd)

		engine, err := player.start(player.config)
		if err != nil {
			return rules.NullMove, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		player.engine = engine
	}

	move, err := player.engine.BestMove(ctx, pos, budget)
	if err != nil {
		if ctx.Err() != nil {
			// the request was abandoned, the engine is still usable
			return rules.NullMove, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}

		player.shutdown()
		return rules.NullMove, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !rules.Contains(player.oracle.LegalMoves(pos), move) {
		player.shutdown()
		return rules.NullMove, fmt.Errorf("%w: illegal move %s", ErrUnavailable, move)
	}

	return move, nil
}

// Running reports whether the engine process is currently alive.
func (player *Player) Running() bool {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.engine != nil
}

// Close shuts the engine process down. It is safe to call Close more than
// once, and on a Player whose engine never started. Close blocks until any
// running request returns.
func (player *Player) Close() {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.shutdown()
}

func (player *Player) shutdown() {
	if player.engine == nil {
		return
	}

	if err := player.engine.Kill(); err != nil {
		logrus.Errorf("engine: shutdown: %v", err)
	}

	player.engine = nil
}
