package resource

// Signal is a coalesced change notification: repeated Notify calls while
// nobody is listening collapse into a single wakeup.
type Signal struct {
	ch chan struct{}
}

func NewSignal() Signal {
	return Signal{ch: make(chan struct{}, 1)}
}

func (s Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Wait returns the channel a consumer blocks on for the next change.
func (s Signal) Wait() <-chan struct{} {
	return s.ch
}
