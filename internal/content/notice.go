package content

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// NoticeDelay is how long a transient notice stays up.
const NoticeDelay = 2500 * time.Millisecond

// Notifier holds at most one transient notice. Each notice gets exactly one
// dismiss timer, created when it is shown; nothing else restarts it.
type Notifier struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	text     string
	seq      uint64
	timer    clockwork.Timer
	closed   bool
	onChange func(text string)
}

// NewNotifier calls onChange (if set) with the new text whenever a notice is
// shown or dismissed; "" means nothing is shown.
func NewNotifier(clock clockwork.Clock, onChange func(text string)) *Notifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Notifier{clock: clock, onChange: onChange}
}

func (n *Notifier) Show(text string) {
	if text == "" {
		return
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.text = text
	n.timer = n.clock.AfterFunc(NoticeDelay, func() { n.expire(seq) })
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb(text)
	}
}

// expire dismisses the notice only if it is still the one the timer was made for.
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if seq != n.seq || n.text == "" {
		n.mu.Unlock()
		return
	}
	n.text = ""
	n.timer = nil
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb("")
	}
}

// Dismiss hides the current notice early.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.mu.Unlock()
	n.expire(n.current())
}

func (n *Notifier) current() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq
}

func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

// Close drops any pending notice without calling onChange again.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.text = ""
	n.closed = true
}
