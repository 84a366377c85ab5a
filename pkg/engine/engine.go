// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/kibitz/pkg/rules"
)

type EngineConfig struct {
	Name string `yaml:"name"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir"`
	Arg  string `yaml:"arg"`

	Stderr string `yaml:"stderr"`

	InitStr string `yaml:"init-string"`

	Options map[string]string `yaml:"options"`

	// Search time per move, and the extra time allowed for the engine
	// to reply before it is considered hung.
	MoveTime time.Duration `yaml:"move-time"`
	Margin   time.Duration `yaml:"margin"`
}

const (
	DefaultMoveTime = time.Second
	DefaultMargin   = time.Second

	handshakeTimeout = 5 * time.Second
	quitTimeout      = time.Second
)

var (
	ErrReadTimeout = errors.New("engine: read i/o timeout")
	ErrExited      = errors.New("engine: process exited")
	ErrBadReply    = errors.New("engine: malformed reply")
)

// StartEngine starts the engine process and performs the UCI handshake.
func StartEngine(config EngineConfig) (*Engine, error) {
	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)
	process.Dir = config.Dir

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdin pipe: %w", err)
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdout pipe: %w", err)
	}

	if config.Stderr != "" {
		file, err := os.OpenFile(config.Stderr, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("engine: stderr file: %w", err)
		}

		// the child keeps its own descriptor after Start
		defer file.Close()
		process.Stderr = file
	}

	if err := process.Start(); err != nil {
		return nil, fmt.Errorf("engine: start %s: %w", config.Cmd, err)
	}

	engine := newEngine(config, process, stdout, stdin)

	if err := engine.Initialize(); err != nil {
		_ = engine.Kill()
		return nil, err
	}

	if err := engine.NewGame(); err != nil {
		_ = engine.Kill()
		return nil, err
	}

	return engine, nil
}

// newEngine wraps the given streams of a running engine. The process may
// be nil if there is none to wait for.
func newEngine(config EngineConfig, process *exec.Cmd, stdout io.Reader, stdin io.Writer) *Engine {
	if config.Name == "" {
		config.Name = "engine"
	}

	engine := &Engine{
		config: config,
		cmd:    process,
		stdin:  stdin,
		writer: bufio.NewWriter(stdin),
		lines:  make(chan string),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	go engine.read(bufio.NewReader(stdout))
	return engine
}

type Engine struct {
	config EngineConfig

	cmd *exec.Cmd

	stdin  io.Writer
	writer *bufio.Writer

	lines chan string

	quit     chan struct{}
	quitOnce sync.Once
	exited   chan struct{}

	// written before lines is closed
	err error
}

func (engine *Engine) read(reader *bufio.Reader) {
	defer close(engine.exited)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			engine.err = err
			close(engine.lines)
			break
		}

		line = strings.Trim(line, " \n\t\r")

		logrus.Debugf("info: (%s)> %s", engine.config.Name, line)

		select {
		case engine.lines <- line:
		case <-engine.quit:
			// nobody is listening anymore, drain until the process exits
		}
	}

	if engine.cmd != nil {
		_ = engine.cmd.Wait()
	}
}

// Initialize initializes the engine on startup.
func (engine *Engine) Initialize() error {
	if err := engine.Write("uci"); err != nil {
		return err
	}

	if _, err := engine.Await(context.Background(), "^uciok", handshakeTimeout); err != nil {
		return err
	}

	for name, value := range engine.config.Options {
		if err := engine.Write("setoption name %s value %s", name, value); err != nil {
			return err
		}
	}

	if engine.config.InitStr != "" {
		if err := engine.Write(engine.config.InitStr); err != nil {
			return err
		}
	}

	return engine.Synchronize(context.Background())
}

// NewGame prepares the engine for a new game of chess.
func (engine *Engine) NewGame() error {
	if err := engine.Write("ucinewgame"); err != nil {
		return err
	}

	return engine.Synchronize(context.Background())
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *Engine) Synchronize(ctx context.Context) error {
	if err := engine.Write("isready"); err != nil {
		return err
	}

	_, err := engine.Await(ctx, "^readyok", handshakeTimeout)
	return err
}

// BestMove asks the engine for its move in the given position, searching
// for the given amount of time.
func (engine *Engine) BestMove(ctx context.Context, pos rules.Position, movetime time.Duration) (rules.Move, error) {
	command := "position fen " + pos.StartFEN()
	if moves := pos.Moves(); len(moves) > 0 {
		strs := make([]string, len(moves))
		for i, move := range moves {
			strs[i] = move.String()
		}

		command += " moves " + strings.Join(strs, " ")
	}

	if err := engine.Write(command); err != nil {
		return rules.NullMove, err
	}

	if err := engine.Synchronize(ctx); err != nil {
		return rules.NullMove, err
	}

	if err := engine.Write("go movetime %d", movetime.Milliseconds()); err != nil {
		return rules.NullMove, err
	}

	margin := engine.config.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}

	line, err := engine.Await(ctx, "^bestmove", movetime+margin)
	if err != nil {
		if ctx.Err() != nil {
			// Let the engine finish its search so the next request does
			// not read a stale bestmove.
			_ = engine.Write("stop")
			_, _ = engine.Await(context.Background(), "^bestmove", margin)
		}

		return rules.NullMove, err
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return rules.NullMove, fmt.Errorf("%w: %q", ErrBadReply, line)
	}

	move, err := rules.ParseMove(fields[1])
	if err != nil {
		return rules.NullMove, fmt.Errorf("%w: %q", ErrBadReply, line)
	}

	return move, nil
}

// Kill asks the engine to quit and kills the process if it does not.
// An engine which is already gone is not an error.
func (engine *Engine) Kill() error {
	engine.quitOnce.Do(func() { close(engine.quit) })

	// the pipe may already be broken
	_ = engine.Write("quit")
	if closer, ok := engine.stdin.(io.Closer); ok {
		_ = closer.Close()
	}

	if engine.cmd == nil {
		return nil
	}

	select {
	case <-engine.exited:
		return nil
	case <-time.After(quitTimeout):
	}

	if err := engine.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("engine: kill %s: %w", engine.config.Name, err)
	}

	select {
	case <-engine.exited:
	case <-time.After(quitTimeout):
		logrus.Warnf("engine: %s did not close its output after being killed", engine.config.Name)
	}

	return nil
}

// Await is a utility function which waits for a particular string from
// the engine with a fixed timeout.
func (engine *Engine) Await(ctx context.Context, pattern string, timeout time.Duration) (string, error) {
	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-timer.C:
			// timer ran out: wait timeout
			return "", ErrReadTimeout

		case line, ok := <-engine.lines:
			if !ok {
				if engine.err != nil && !errors.Is(engine.err, io.EOF) {
					return "", fmt.Errorf("%w: %v", ErrExited, engine.err)
				}

				return "", ErrExited
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

func (engine *Engine) Write(format string, a ...any) error {
	logrus.Debugf("info: ("+engine.config.Name+")< "+format, a...)

	if _, err := fmt.Fprintf(engine.writer, format+"\n", a...); err != nil {
		return err
	}

	return engine.writer.Flush()
}
