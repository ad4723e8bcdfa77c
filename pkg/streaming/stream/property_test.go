package stream

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestProperty_ForEachSeesEveryValueInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.Int()).Draw(t, "values")

		var got []int
		p, err := FromSlice(values).ForEach(func(v int) error {
			got = append(got, v)
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("ForEach: %v", err)
		}
		if _, perr, ok := p.Result(); !ok || perr != nil {
			t.Fatalf("promise not fulfilled: settled=%v err=%v", ok, perr)
		}
		if !slices.Equal(got, values) {
			t.Fatalf("got %v, want %v", got, values)
		}
	})
}

func TestProperty_SetupFailureStopsDeliveryAndIsReturned(t *testing.T) {
	boom := errors.New("boom")

	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Int(), 1, 50).Draw(t, "values")
		failAt := rapid.IntRange(0, len(values)-1).Draw(t, "failAt")

		calls := 0
		terminal := 0
		sub, err := FromSlice(values).SubscribeFuncs(
			func(int) error {
				calls++
				if calls == failAt+1 {
					return boom
				}
				return nil
			},
			func(error) error { terminal++; return nil },
			func() error { terminal++; return nil },
		)
		if !errors.Is(err, boom) {
			t.Fatalf("Subscribe returned %v, want %v", err, boom)
		}
		if calls != failAt+1 {
			t.Fatalf("handler called %d times, want %d", calls, failAt+1)
		}
		if terminal != 0 {
			t.Fatalf("terminal handlers ran %d times", terminal)
		}
		if !sub.Closed() {
			t.Fatal("subscription not released")
		}
	})
}

func TestProperty_TakeBoundsDelivery(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.Int()).Draw(t, "values")
		n := rapid.Int64Range(-2, 60).Draw(t, "n")

		var events []string
		_, err := FromSlice(values).Take(n).SubscribeFuncs(
			func(int) error { events = append(events, "next"); return nil },
			func(error) error { events = append(events, "error"); return nil },
			func() error { events = append(events, "complete"); return nil },
		)
		if err != nil {
			t.Fatalf("Subscribe: %v", err)
		}

		want := int(min(max(n, 0), int64(len(values))))
		if len(events) != want+1 {
			t.Fatalf("got %d events, want %d values and one completion", len(events), want)
		}
		if events[len(events)-1] != "complete" || strings.Count(strings.Join(events, ","), "complete") != 1 {
			t.Fatalf("expected exactly one trailing completion, got %v", events)
		}
	})
}
