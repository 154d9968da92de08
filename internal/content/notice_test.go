package content

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) record(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, text)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func TestNotifierAutoDismiss(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	n := NewNotifier(clock, rec.record)

	n.Show("Saved.")
	assert.Equal(t, "Saved.", n.Current())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(NoticeDelay - time.Millisecond)
	assert.Equal(t, "Saved.", n.Current())

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool { return n.Current() == "" }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Saved.", ""}, rec.all())
}

func TestNotifierNewNoticeGetsItsOwnTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	n := NewNotifier(clock, nil)

	n.Show("first")
	clock.Advance(2 * time.Second)
	n.Show("second")

	// the first notice's deadline passes without touching the second
	clock.Advance(time.Second)
	assert.Equal(t, "second", n.Current())

	clock.Advance(NoticeDelay)
	assert.Eventually(t, func() bool { return n.Current() == "" }, time.Second, time.Millisecond)
}

func TestNotifierDismissAndClose(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	n := NewNotifier(clock, rec.record)

	n.Show("hello")
	n.Dismiss()
	assert.Equal(t, "", n.Current())

	n.Show("again")
	n.Close()
	n.Show("ignored")
	assert.Equal(t, "", n.Current())
	assert.Equal(t, []string{"hello", "", "again"}, rec.all())
}
