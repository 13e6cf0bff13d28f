package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/stopwatch/internal/logic"
)

type recorder struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (r *recorder) send(url, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, url+" "+message)
	return r.err
}

func alarm() logic.Event {
	return logic.Event{Type: logic.EventAlarm, Mode: logic.ModeCountDown, Status: logic.StatusAlarmed}
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "stopwatch alarm: countdown reached 00:00:00", FormatMessage(alarm()))
	assert.Empty(t, FormatMessage(logic.Event{Type: logic.EventReset}))
	assert.Empty(t, FormatMessage(logic.Event{Type: logic.EventMode}))
}

func TestShoutrrrSendsAlarmToEveryURL(t *testing.T) {
	rec := &recorder{}
	n := NewShoutrrr([]string{"generic://a", "generic://b"}, rec.send)

	n.Notify(alarm())
	n.Notify(logic.Event{Type: logic.EventPaused})
	require.NoError(t, n.Close())

	assert.Equal(t, []string{
		"generic://a stopwatch alarm: countdown reached 00:00:00",
		"generic://b stopwatch alarm: countdown reached 00:00:00",
	}, rec.sent)
}

func TestShoutrrrSendErrorDoesNotStopWorker(t *testing.T) {
	rec := &recorder{err: errors.New("service down")}
	n := NewShoutrrr([]string{"generic://a"}, rec.send)

	n.Notify(alarm())
	n.Notify(alarm())
	require.NoError(t, n.Close())

	assert.Len(t, rec.sent, 2)
}

func TestShoutrrrNoURLs(t *testing.T) {
	rec := &recorder{}
	n := NewShoutrrr(nil, rec.send)

	n.Notify(alarm())
	require.NoError(t, n.Close())

	assert.Empty(t, rec.sent)
}

func TestShoutrrrNotifyNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	n := NewShoutrrr([]string{"generic://a"}, func(url, message string) error {
		<-block
		return nil
	})

	// One in flight plus a full queue; the rest are dropped.
	for i := 0; i < queueSize+10; i++ {
		n.Notify(alarm())
	}

	close(block)
	require.NoError(t, n.Close())
}

func TestShoutrrrCloseIdempotent(t *testing.T) {
	n := NewShoutrrr(nil, func(string, string) error { return nil })
	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
}

func TestFakeNotifier(t *testing.T) {
	var f FakeNotifier
	var _ Notifier = &f

	f.Notify(alarm())
	f.Notify(logic.Event{Type: logic.EventReset})

	assert.Equal(t, 1, f.Count())
	require.NoError(t, f.Close())
	assert.True(t, f.Closed)
}
