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

// Package session drives a game from a single event loop. Input events,
// clock ticks and computer moves are all handled by Run, which is the only
// goroutine that touches the game.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/kibitz/pkg/engine"
	"laptudirm.com/x/kibitz/pkg/game"
	"laptudirm.com/x/kibitz/pkg/rules"
)

const (
	DefaultTick     = 100 * time.Millisecond
	DefaultAIDelay  = 500 * time.Millisecond
	DefaultMoveTime = engine.DefaultMoveTime
)

type Options struct {
	// Tick is the interval between clock updates.
	Tick time.Duration

	// AIDelay is how long the computer waits before it starts thinking,
	// and MoveTime how long the engine may search.
	AIDelay  time.Duration
	MoveTime time.Duration

	// OnUpdate is called from the event loop after every change.
	OnUpdate func(Update)

	Now func() time.Time
}

// Update is published to Options.OnUpdate.
type Update struct {
	game.Snapshot

	// Selected is rules.NoSquare when no square is selected.
	Selected rules.Square

	// Thinking is set while a computer move is being computed.
	Thinking bool

	// Tick is set for updates caused only by the clock.
	Tick bool
}

type result struct {
	id         uint64
	generation uint64
	move       rules.Move
	err        error
}

type Session struct {
	game     *game.Game
	mover    engine.Mover
	fallback *engine.Fallback
	options  Options

	selection Selection

	// the computer move being computed, if pending
	request uint64
	pending bool
	cancel  context.CancelFunc

	// set once the engine has been released for the current game
	released bool

	// closed when the last release is complete, nil if there was none
	releasing chan struct{}

	results chan result
	done    chan struct{}
	wg      sync.WaitGroup
}

// New returns a session for the given game. Computer moves are requested
// from mover, falling back to fallback when it fails. If mover has a Close
// method, it is called whenever a game ends and when the session exits.
func New(g *game.Game, mover engine.Mover, fallback *engine.Fallback, options Options) *Session {
	if options.Tick <= 0 {
		options.Tick = DefaultTick
	}

	if options.AIDelay <= 0 {
		options.AIDelay = DefaultAIDelay
	}

	if options.MoveTime <= 0 {
		options.MoveTime = DefaultMoveTime
	}

	if options.Now == nil {
		options.Now = time.Now
	}

	if fallback == nil {
		fallback = engine.NewFallback(g.Oracle(), time.Now().UnixNano())
	}

	return &Session{
		game:     g,
		mover:    mover,
		fallback: fallback,
		options:  options,
		released: true,
		results:  make(chan result),
		done:     make(chan struct{}),
	}
}

// Run processes events until a Quit event arrives, the channel is closed
// or the context is cancelled. The engine is always shut down on return.
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	ticker := time.NewTicker(s.options.Tick)
	defer ticker.Stop()

	defer s.shutdown()

	s.publish(false)

	for {
		tick := false

		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-events:
			if !ok || event.Kind == Quit {
				logrus.Debug("session: quitting")
				return nil
			}

			s.handle(event)

		case <-ticker.C:
			status := s.game.Status()
			s.game.Tick(s.options.Now())
			tick = status == s.game.Status()

		case res := <-s.results:
			s.receive(res)
		}

		s.sync()
		s.publish(tick)
	}
}

func (s *Session) handle(event Event) {
	logrus.Debugf("session: %s event", event.Kind)
	now := s.options.Now()

	switch event.Kind {
	case SquareClicked:
		if s.game.Status() == game.InProgress && !s.game.AIToMove() {
			s.selection.Click(s.game, event.Square, now)
		}

	case MoveEntered:
		if s.game.Status() == game.InProgress && !s.game.AIToMove() {
			s.game.SubmitMove(event.Move.From, event.Move.To, event.Move.Promotion, now)
			s.selection.Clear()
		}

	case StartClicked:
		if s.game.Start(now) {
			s.selection.Clear()
			s.released = false
		}

	case ResignClicked:
		s.game.Resign()

	case NewGameClicked:
		s.cancelRequest()
		s.game.NewGame()
		s.selection.Clear()

	case ModeToggled:
		s.game.ToggleMode()

	case TimeControlCycled:
		s.game.CycleTimeControl()
	}
}

// sync brings the computer player in line with the game: it starts a
// request when the computer is to move, and cancels it and releases the
// engine once the game is no longer in progress.
func (s *Session) sync() {
	if s.game.Status() != game.InProgress {
		s.cancelRequest()
		s.release()
		return
	}

	if s.game.AIToMove() && !s.pending {
		s.startRequest()
	}
}

func (s *Session) startRequest() {
	ctx, cancel := context.WithCancel(context.Background())

	s.request++
	s.pending = true
	s.cancel = cancel

	id, generation, pos := s.request, s.game.Generation(), s.game.Position()
	releasing := s.releasing

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		res := result{id: id, generation: generation}
		res.move, res.err = s.think(ctx, pos, releasing)

		select {
		case s.results <- res:
		case <-s.done:
		}
	}()
}

// think waits out the delay before a computer move and asks the mover for
// it. The engine of the previous game must be closed first, or its Close
// could kill the engine started for this request.
func (s *Session) think(ctx context.Context, pos rules.Position, releasing <-chan struct{}) (rules.Move, error) {
	timer := time.NewTimer(s.options.AIDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return rules.NullMove, ctx.Err()
	}

	if releasing != nil {
		select {
		case <-releasing:
		case <-ctx.Done():
			return rules.NullMove, ctx.Err()
		}
	}

	if s.mover == nil {
		return rules.NullMove, engine.ErrUnavailable
	}

	return s.mover.RequestMove(ctx, pos, s.options.MoveTime)
}

func (s *Session) cancelRequest() {
	if s.pending {
		s.cancel()
		s.pending = false
	}
}

func (s *Session) receive(res result) {
	if res.id != s.request || !s.pending {
		// superseded by a newer request
		return
	}

	s.pending = false
	s.cancel()

	if errors.Is(res.err, context.Canceled) {
		return
	}

	now := s.options.Now()
	if res.err == nil && s.game.ApplyAIMove(res.move, res.generation, now) {
		return
	}

	if res.generation != s.game.Generation() || !s.game.AIToMove() {
		return
	}

	if res.err != nil {
		logrus.Warnf("session: %v, using fallback move", res.err)
	} else {
		logrus.Warnf("session: engine move %s rejected, using fallback move", res.move)
	}

	move := s.fallback.Select(s.game.Position())
	s.game.ApplyAIMove(move, res.generation, now)
}

// release shuts the engine down in the background, once per game.
func (s *Session) release() {
	if s.released {
		return
	}

	s.released = true
	if closer, ok := s.mover.(interface{ Close() }); ok {
		done := make(chan struct{})
		s.releasing = done

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer close(done)
			closer.Close()
		}()
	}
}

func (s *Session) shutdown() {
	s.cancelRequest()
	close(s.done)
	s.wg.Wait()

	if closer, ok := s.mover.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (s *Session) publish(tick bool) {
	if s.options.OnUpdate == nil {
		return
	}

	update := Update{
		Snapshot: s.game.Snapshot(),
		Selected: rules.NoSquare,
		Thinking: s.pending,
		Tick:     tick,
	}

	if sq, ok := s.selection.Square(); ok {
		update.Selected = sq
	}

	s.options.OnUpdate(update)
}
