package stream

import (
	"errors"
	"testing"

	"github.com/vnykmshr/asyncflow/internal/testutil"
	"github.com/vnykmshr/asyncflow/pkg/promise"
)

func TestSubscription_ReleaseRunsTeardownsOnceInReverse(t *testing.T) {
	var order []int
	sub := NewSubscription(
		TeardownFunc(func() { order = append(order, 1) }),
		TeardownFunc(func() { order = append(order, 2) }),
	)
	sub.Add(TeardownFunc(func() { order = append(order, 3) }))

	sub.Release()
	sub.Release()

	testutil.AssertEqual(t, sub.Closed(), true)
	testutil.AssertEqual(t, len(order), 3)
	testutil.AssertEqual(t, order[0], 3)
	testutil.AssertEqual(t, order[2], 1)
}

func TestSubscription_AddAfterReleaseRunsImmediately(t *testing.T) {
	sub := NewSubscription()
	sub.Release()

	ran := false
	sub.Add(TeardownFunc(func() { ran = true }))
	testutil.AssertEqual(t, ran, true)
}

func TestSubscription_Remove(t *testing.T) {
	parent := NewSubscription()
	child := NewSubscription()
	parent.Add(child)
	parent.Add(TeardownFunc(func() {}))

	parent.Remove(child)
	parent.Remove(TeardownFunc(func() {})) // funcs are not comparable; must not panic
	parent.Release()

	testutil.AssertEqual(t, child.Closed(), false)
}

func TestSubscription_NestedRelease(t *testing.T) {
	parent := NewSubscription()
	child := NewSubscription()
	grandchild := NewSubscription()
	parent.Add(child)
	child.Add(grandchild)
	parent.Add(parent)

	parent.Release()

	testutil.AssertEqual(t, child.Closed(), true)
	testutil.AssertEqual(t, grandchild.Closed(), true)
}

func TestSubscription_PanickingTeardown(t *testing.T) {
	ranAfter := false
	sub := NewSubscription(
		TeardownFunc(func() { ranAfter = true }),
		TeardownFunc(func() { panic("first") }),
	)
	nested := NewSubscription(TeardownFunc(func() { panic("second") }))
	sub.Add(nested)

	defer func() {
		r := recover()
		relErr, ok := r.(*ReleaseError)
		if !ok {
			t.Fatalf("expected *ReleaseError, got %v", r)
		}
		testutil.AssertEqual(t, len(relErr.Panics), 2)
		testutil.AssertEqual(t, relErr.Panics[0].Value.(string), "second")
		testutil.AssertEqual(t, ranAfter, true)
		testutil.AssertEqual(t, sub.Closed(), true)
	}()
	sub.Release()
}

func TestAwaitTeardown(t *testing.T) {
	t.Run("released before the teardown is known", func(t *testing.T) {
		var resolve func(Teardown)
		p := promise.New(func(res func(Teardown), _ func(error)) { resolve = res })

		ran := false
		td := AwaitTeardown(p)
		td.Release()
		testutil.AssertEqual(t, ran, false)

		resolve(TeardownFunc(func() { ran = true }))
		testutil.AssertEqual(t, ran, true)
	})

	t.Run("known before release", func(t *testing.T) {
		ran := 0
		td := AwaitTeardown(promise.Resolved[Teardown](TeardownFunc(func() { ran++ })))
		testutil.AssertEqual(t, ran, 0)

		td.Release()
		td.Release()
		testutil.AssertEqual(t, ran, 1)
	})

	t.Run("rejected promise has nothing to release", func(t *testing.T) {
		td := AwaitTeardown(promise.Rejected[Teardown](errors.New("no teardown")))
		td.Release()
	})
}
