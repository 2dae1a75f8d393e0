package nav

import (
	"testing"
	"time"
)

func TestParseKey(t *testing.T) {
	cases := map[string]Key{
		"ArrowLeft":  KeyLeft,
		"left":       KeyLeft,
		"ArrowRight": KeyRight,
		" up ":       KeyUp,
		"ArrowDown":  KeyDown,
		"Home":       KeyHome,
		"today":      KeyHome,
		"Escape":     KeyNone,
		"":           KeyNone,
	}
	for in, want := range cases {
		if got := ParseKey(in); got != want {
			t.Fatalf("ParseKey(%q) = %v, want %v", in, got, want)
		}
	}
	for _, k := range []Key{KeyLeft, KeyRight, KeyUp, KeyDown, KeyHome} {
		if ParseKey(k.String()) != k {
			t.Fatalf("String/ParseKey mismatch for %d", k)
		}
	}
}

func TestHubScopedRegistration(t *testing.T) {
	hub := NewHub()
	c := newTestController()

	release := c.Activate(hub)
	if hub.Len() != 1 {
		t.Fatalf("expected one listener, got %d", hub.Len())
	}
	hub.Dispatch(KeyRight)
	if want := date(2024, time.March, 13); !c.Selection().AnchorWeek.Equal(want) {
		t.Fatalf("dispatch did not reach controller: %+v", c.Selection())
	}

	release()
	release()
	if hub.Len() != 0 {
		t.Fatalf("release should remove the listener, have %d", hub.Len())
	}
	hub.Dispatch(KeyRight)
	if want := date(2024, time.March, 13); !c.Selection().AnchorWeek.Equal(want) {
		t.Fatalf("released controller still receives keys: %+v", c.Selection())
	}
}

func TestHubReleaseOnPanic(t *testing.T) {
	hub := NewHub()
	c := newTestController()

	func() {
		defer func() { _ = recover() }()
		release := c.Activate(hub)
		defer release()
		panic("view crashed")
	}()

	if hub.Len() != 0 {
		t.Fatalf("listener leaked after panic")
	}
}

func TestHubDispatchOrder(t *testing.T) {
	hub := NewHub()
	var order []int
	for i := range 3 {
		defer hub.Register(func(Key) { order = append(order, i) })()
	}
	hub.Dispatch(KeyHome)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("dispatch order = %v", order)
	}
}
