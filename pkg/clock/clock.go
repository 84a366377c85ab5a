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

// Package clock implements a two-sided chess clock. Only the active side's
// budget decreases, and budgets never go below zero.
package clock

import (
	"fmt"
	"time"

	"laptudirm.com/x/kibitz/pkg/rules"
)

type Clock struct {
	remaining [rules.SideN]time.Duration
	increment time.Duration

	active  rules.Side
	running bool

	// baseline for the next Tick
	last time.Time
}

// New returns a stopped clock set to the given time control.
func New(tc TimeControl) *Clock {
	var cl Clock
	cl.Reset(tc)
	return &cl
}

// Reset sets both sides' remaining time to the base time of the time
// control and stops the clock.
func (cl *Clock) Reset(tc TimeControl) {
	cl.remaining = [rules.SideN]time.Duration{tc.Base, tc.Base}
	cl.increment = tc.Inc
	cl.active = rules.White
	cl.running = false
	cl.last = time.Time{}
}

// SwitchActive makes side the one whose budget decreases from now on.
// Time elapsed since the last tick is charged to the previously active
// side, which is then credited the increment.
func (cl *Clock) SwitchActive(side rules.Side, now time.Time) {
	if cl.running {
		cl.Tick(now)

		if side != cl.active && cl.remaining[cl.active] > 0 {
			cl.remaining[cl.active] += cl.increment
		}
	}

	cl.active = side
	cl.running = true
	cl.last = now
}

// Tick charges the time elapsed since the last update to the active side
// and reports whether its budget has run out. Ticking a stopped clock or
// ticking twice with the same timestamp changes nothing.
func (cl *Clock) Tick(now time.Time) bool {
	if !cl.running {
		return false
	}

	if elapsed := now.Sub(cl.last); elapsed > 0 {
		cl.remaining[cl.active] -= elapsed
		if cl.remaining[cl.active] < 0 {
			cl.remaining[cl.active] = 0
		}

		cl.last = now
	}

	return cl.remaining[cl.active] == 0
}

// Stop freezes both budgets.
func (cl *Clock) Stop() {
	cl.running = false
}

// Remaining returns the time left for the given side.
func (cl *Clock) Remaining(side rules.Side) time.Duration {
	return cl.remaining[side]
}

// Active returns the side whose budget is decreasing, if the clock is
// running.
func (cl *Clock) Active() (rules.Side, bool) {
	return cl.active, cl.running
}

func (cl *Clock) String() string {
	return fmt.Sprintf(
		"White: %s | Black: %s",
		Format(cl.remaining[rules.White]),
		Format(cl.remaining[rules.Black]),
	)
}

// Format formats a duration as minutes and seconds, like "4:05".
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
