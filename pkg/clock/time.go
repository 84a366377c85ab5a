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

package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeControl is the starting budget of each side along with the
// increment credited after every move.
type TimeControl struct {
	Base, Inc time.Duration
}

// DefaultPresets are the selectable time controls, in cycling order.
var DefaultPresets = []TimeControl{
	{Base: 5 * time.Minute},
	{Base: 10 * time.Minute},
	{Base: 15 * time.Minute},
	{Base: 30 * time.Minute},
}

// String formats the time control as minutes+seconds, like "5+0".
func (tc TimeControl) String() string {
	return formatNumber(tc.Base.Minutes()) + "+" + formatNumber(tc.Inc.Seconds())
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseTime parses a time control of the form base+increment, with the
// base time in minutes and the increment in seconds.
func ParseTime(time_str string) (TimeControl, error) {
	time_str, inc_str, found := strings.Cut(strings.TrimSpace(time_str), "+")
	if !found {
		return TimeControl{}, errors.New("parse tc: increment not found")
	}

	mins, err := strconv.ParseFloat(time_str, 64)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc: %w", err)
	}

	incs, err := strconv.ParseFloat(inc_str, 64)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc: %w", err)
	}

	if mins <= 0 || incs < 0 {
		return TimeControl{}, fmt.Errorf("parse tc: invalid time control %q", time_str+"+"+inc_str)
	}

	return TimeControl{
		Base: time.Millisecond * time.Duration(mins*60*1000),
		Inc:  time.Millisecond * time.Duration(incs*1000),
	}, nil
}

// ParsePresets parses a list of time controls.
func ParsePresets(strs []string) ([]TimeControl, error) {
	presets := make([]TimeControl, 0, len(strs))
	for _, str := range strs {
		tc, err := ParseTime(str)
		if err != nil {
			return nil, err
		}

		presets = append(presets, tc)
	}

	return presets, nil
}
