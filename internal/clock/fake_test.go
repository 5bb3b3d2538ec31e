package clock

import (
	"testing"
	"time"
)

func TestFakeAfterFuncFiresOnDeadline(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	fired := 0
	fake.AfterFunc(5*time.Second, func() { fired++ })

	fake.Advance(4 * time.Second)
	if fired != 0 {
		t.Fatalf("fired early: %d", fired)
	}
	fake.Advance(time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	fake.Advance(time.Minute)
	if fired != 1 {
		t.Fatalf("fired twice: %d", fired)
	}
	if fake.Pending() != 0 {
		t.Fatalf("pending = %d", fake.Pending())
	}
}

func TestFakeStopPreventsFiring(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	fired := false
	timer := fake.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("first Stop should report true")
	}
	if timer.Stop() {
		t.Fatal("second Stop should report false")
	}
	fake.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	fake := Fake(time.Unix(0, 0))
	var order []int
	fake.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	fake.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	fake.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	fake.Advance(3 * time.Second)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("order = %v", order)
	}
}
