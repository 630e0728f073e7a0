package tuiengine

import "testing"

func TestEventQueueOrder(t *testing.T) {
	q := newEventQueue(8)

	q.push(key('a'))
	q.push(key('b'))

	e, ok := q.pop()
	if !ok || e.(KeyEvent).Rune != 'a' {
		t.Errorf("expected FIFO order")
	}
	e, _ = q.pop()
	if e.(KeyEvent).Rune != 'b' {
		t.Errorf("expected FIFO order")
	}
	if _, ok := q.pop(); ok {
		t.Errorf("expected empty queue")
	}
}

func TestEventQueueCoalescesResize(t *testing.T) {
	q := newEventQueue(8)

	q.push(ResizeEvent{W: 10, H: 10})
	q.push(key('a'))
	q.push(ResizeEvent{W: 20, H: 20})

	if q.len() != 2 {
		t.Fatalf("expected resize coalesced, got %d events", q.len())
	}

	// Only the latest resize survives
	var seen []Event
	for {
		e, ok := q.pop()
		if !ok {
			break
		}
		seen = append(seen, e)
	}
	last := seen[len(seen)-1]
	if resize, ok := last.(ResizeEvent); !ok || resize.W != 20 {
		t.Errorf("expected latest resize kept, got %v", seen)
	}
}

func TestEventQueueCoalescesMouseMoves(t *testing.T) {
	q := newEventQueue(8)

	q.push(MouseEvent{Kind: MouseMove, X: 1, Y: 1})
	q.push(MouseEvent{Kind: MouseMove, X: 2, Y: 2})
	q.push(MouseEvent{Kind: MousePress, X: 3, Y: 3})

	if q.len() != 2 {
		t.Fatalf("expected moves coalesced, got %d", q.len())
	}

	e, _ := q.pop()
	if me := e.(MouseEvent); me.Kind != MouseMove || me.X != 2 {
		t.Errorf("expected latest move first, got %+v", me)
	}
	e, _ = q.pop()
	if me := e.(MouseEvent); me.Kind != MousePress {
		t.Errorf("expected press preserved, got %+v", me)
	}
}

func TestEventQueueBoundedCapacity(t *testing.T) {
	q := newEventQueue(2)

	if !q.push(key('a')) || !q.push(key('b')) {
		t.Fatalf("expected pushes within capacity to succeed")
	}
	if q.push(key('c')) {
		t.Errorf("expected overflow push to fail")
	}
	if q.len() != 2 {
		t.Errorf("expected bounded queue, got %d", q.len())
	}
}

func TestEventQueueSignal(t *testing.T) {
	q := newEventQueue(4)
	q.push(key('a'))

	select {
	case <-q.wait():
	default:
		t.Errorf("expected signal after push")
	}
}
