package rgbmatrix

import (
	"sync/atomic"
)

// exchange hands encoded frames from the canvas to the render loop without
// locks. Three frames rotate between the loop (displayed), the mailbox or
// the recycle slot, and the canvas (being encoded).
type exchange struct {
	mailbox  atomic.Pointer[Frame]
	recycled chan *Frame
	seq      uint64
	shown    atomic.Uint64
	vsync    chan struct{}
	done     chan struct{}
}

func newExchange(spare *Frame) *exchange {
	e := &exchange{
		recycled: make(chan *Frame, 1),
		vsync:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	e.recycled <- spare
	return e
}

// publish makes f the next frame to show and returns a free frame to encode
// into, along with the sequence number assigned to f.
func (e *exchange) publish(f *Frame) (*Frame, uint64, error) {
	select {
	case <-e.done:
		return nil, 0, ErrClosed
	default:
	}
	e.seq++
	f.seq = e.seq
	if prev := e.mailbox.Swap(f); prev != nil {
		// Never shown; reuse it.
		return prev, f.seq, nil
	}
	select {
	case next := <-e.recycled:
		return next, f.seq, nil
	case <-e.done:
		return nil, 0, ErrClosed
	}
}

// waitShown blocks until the render loop has picked up frame seq.
func (e *exchange) waitShown(seq uint64) error {
	for e.shown.Load() < seq {
		select {
		case <-e.vsync:
		case <-e.done:
			return ErrClosed
		}
	}
	return nil
}

// take is called by the render loop at the start of a cycle. It returns the
// frame to display, recycling cur if a new one was published.
func (e *exchange) take(cur *Frame) *Frame {
	f := e.mailbox.Swap(nil)
	if f == nil {
		return cur
	}
	e.recycled <- cur
	e.shown.Store(f.seq)
	select {
	case e.vsync <- struct{}{}:
	default:
	}
	return f
}
