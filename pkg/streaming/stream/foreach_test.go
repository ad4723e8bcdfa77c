package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/asyncflow/internal/testutil"
	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/promise"
)

func TestForEach_ResolvesOnComplete(t *testing.T) {
	var got []int
	p, err := Of(1, 2, 3).ForEach(func(v int) error {
		got = append(got, v)
		return nil
	}, nil)
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	_, err = p.Await(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(got), 3)
	testutil.AssertEqual(t, got[2], 3)
}

func TestForEach_RejectsWithStreamError(t *testing.T) {
	boom := errors.New("boom")
	p, err := Throw[int](boom).ForEach(func(int) error { return nil }, nil)
	testutil.AssertNoError(t, err)

	_, perr, ok := p.Result()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, perr, boom)
}

func TestForEach_RejectsOnSynchronousHandlerFailure(t *testing.T) {
	boom := errors.New("handler failed")
	var got []int
	p, err := Of(1, 2, 3).ForEach(func(v int) error {
		got = append(got, v)
		if v == 2 {
			return boom
		}
		return nil
	}, nil)
	testutil.AssertNoError(t, err)

	_, perr, ok := p.Result()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertErrorIs(t, perr, boom)
	testutil.AssertEqual(t, len(got), 2)
}

func TestForEach_RejectsOnAsynchronousHandlerFailure(t *testing.T) {
	boom := errors.New("second value")
	ch := make(chan int)
	var got []int
	var released atomic.Bool

	src := New(func(sub *Subscriber[int]) (Teardown, error) {
		sub.Add(TeardownFunc(func() { released.Store(true) }))
		return FromChannel(ch).run(sub)
	})

	p, err := src.ForEach(func(v int) error {
		got = append(got, v)
		if v == 2 {
			return boom
		}
		return nil
	}, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, p.Settled(), false)

	ch <- 1
	testutil.AssertEqual(t, released.Load(), false)
	ch <- 2

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	_, err = p.Await(ctx)
	testutil.AssertErrorIs(t, err, boom)
	testutil.AssertEqual(t, len(got), 2)

	// the failure releases the subscription, so the producer stops reading
	testutil.Eventually(t, released.Load, time.Second, 5*time.Millisecond)
	select {
	case ch <- 3:
		t.Fatal("third value was consumed after the subscription was released")
	case <-time.After(50 * time.Millisecond):
	}
	testutil.AssertEqual(t, len(got), 2)
}

func TestForEach_HandlerPanicRejects(t *testing.T) {
	p, err := Of(1).ForEach(func(int) error { panic("bad handler") }, nil)
	testutil.AssertNoError(t, err)

	_, perr, _ := p.Result()
	var pe *gferrors.PanicError
	if !errors.As(perr, &pe) {
		t.Fatalf("expected *PanicError, got %v", perr)
	}
}

func TestForEach_PromiseFactoryResolution(t *testing.T) {
	counting := func(calls *int) promise.Factory {
		return func(executor func(func(promise.Void), func(error))) *Pending {
			*calls++
			return promise.New(executor)
		}
	}

	t.Run("explicit factory wins", func(t *testing.T) {
		explicit, configured := 0, 0
		Configure(Config{PromiseFactory: counting(&configured)})
		defer Configure(DefaultConfig())

		_, err := Of(1).ForEach(func(int) error { return nil }, counting(&explicit))
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, explicit, 1)
		testutil.AssertEqual(t, configured, 0)
	})

	t.Run("configured factory", func(t *testing.T) {
		configured := 0
		Configure(Config{PromiseFactory: counting(&configured)})
		defer Configure(DefaultConfig())

		_, err := Of(1).ForEach(func(int) error { return nil }, nil)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, configured, 1)
	})

	t.Run("no factory available", func(t *testing.T) {
		saved := promise.Default
		promise.Default = nil
		defer func() { promise.Default = saved }()

		subscribed := false
		s := New(func(sub *Subscriber[int]) (Teardown, error) {
			subscribed = true
			return nil, sub.Complete()
		})

		p, err := s.ForEach(func(int) error { return nil }, nil)
		testutil.AssertErrorIs(t, err, ErrNoPromiseFactory)
		testutil.AssertErrorIs(t, err, gferrors.ErrInvalidConfiguration)
		if p != nil {
			t.Fatal("expected no promise")
		}
		testutil.AssertEqual(t, subscribed, false)

		testutil.AssertErrorIs(t, s.ForEachContext(context.Background(), func(int) error { return nil }), ErrNoPromiseFactory)
	})
}

func TestForEachContext(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		sum := 0
		err := Of(1, 2, 3).ForEachContext(context.Background(), func(v int) error {
			sum += v
			return nil
		})
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, sum, 6)
	})

	t.Run("cancellation releases the subscription", func(t *testing.T) {
		released := make(chan struct{})
		s := New(func(sub *Subscriber[int]) (Teardown, error) {
			return TeardownFunc(func() { close(released) }), nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := s.ForEachContext(ctx, func(int) error { return nil })
		testutil.AssertErrorIs(t, err, context.DeadlineExceeded)

		select {
		case <-released:
		case <-time.After(testutil.TestTimeout):
			t.Fatal("subscription was not released")
		}
	})
}
