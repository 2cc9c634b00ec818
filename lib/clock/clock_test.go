// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFake_SleepAdvancesWithoutBlocking(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	fake := NewFake(start)

	fake.Sleep(10 * time.Second)
	fake.Sleep(5 * time.Second)

	if got, want := fake.Now(), start.Add(15*time.Second); !got.Equal(want) {
		t.Errorf("Now(): got %v, want %v", got, want)
	}

	slept := fake.Slept()
	if len(slept) != 2 || slept[0] != 10*time.Second || slept[1] != 5*time.Second {
		t.Errorf("Slept(): got %v, want [10s 5s]", slept)
	}
}

func TestFake_Advance(t *testing.T) {
	start := time.Unix(0, 0)
	fake := NewFake(start)
	fake.Advance(time.Hour)

	if got, want := fake.Now(), start.Add(time.Hour); !got.Equal(want) {
		t.Errorf("Now(): got %v, want %v", got, want)
	}
	if len(fake.Slept()) != 0 {
		t.Errorf("Advance must not count as a Sleep, got %v", fake.Slept())
	}
}

func TestReal_NowMovesForward(t *testing.T) {
	real := Real()
	first := real.Now()
	second := real.Now()
	if second.Before(first) {
		t.Errorf("real clock went backwards: %v then %v", first, second)
	}
}
