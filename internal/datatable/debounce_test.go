package datatable

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commits struct {
	mu     sync.Mutex
	values []string
}

func (c *commits) add(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
}

func (c *commits) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.values...)
}

func TestDebouncer_LastWriteWins(t *testing.T) {
	var c commits
	d := NewDebouncer(20*time.Millisecond, c.add)

	d.Input("c")
	d.Input("cu")
	d.Input("cur")
	assert.Equal(t, "cur", d.Value())
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool { return len(c.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"cur"}, c.get())
	assert.False(t, d.Pending())

	// No late duplicate from the superseded timers.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"cur"}, c.get())
}

func TestDebouncer_ResetDropsPending(t *testing.T) {
	var c commits
	d := NewDebouncer(20*time.Millisecond, c.add)

	d.Input("curso")
	d.Reset("")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, c.get())
	assert.Equal(t, "", d.Value())
}

func TestDebouncer_ResetWaitsForRunningCommit(t *testing.T) {
	var c commits
	started := make(chan struct{})
	release := make(chan struct{})
	d := NewDebouncer(5*time.Millisecond, func(v string) {
		close(started)
		<-release
		c.add(v)
	})

	d.Input("stale")
	<-started

	reset := make(chan struct{})
	go func() {
		d.Reset("")
		close(reset)
	}()

	select {
	case <-reset:
		t.Fatal("Reset returned while a commit was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-reset
	assert.Equal(t, []string{"stale"}, c.get())
	assert.Equal(t, "", d.Value())
	assert.False(t, d.Pending())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"stale"}, c.get())
}

func TestDebouncer_Flush(t *testing.T) {
	var c commits
	d := NewDebouncer(time.Hour, c.add)

	d.Flush()
	assert.Empty(t, c.get())

	d.Input("libro")
	d.Flush()
	assert.Equal(t, []string{"libro"}, c.get())
	assert.False(t, d.Pending())
}

func TestDebouncer_Stop(t *testing.T) {
	var c commits
	d := NewDebouncer(20*time.Millisecond, c.add)

	d.Input("x")
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, c.get())
}

func TestDebouncer_DrivesTableFilter(t *testing.T) {
	rows := []Record{{"id": 1, "title": "Curso A"}, {"id": 2, "title": "Manual B"}}
	table := New([]Column[Record]{{ID: "title"}}, rows, Options[Record]{})
	d := NewDebouncer(10*time.Millisecond, table.SetGlobalFilter)

	for _, q := range []string{"c", "cu", "cur", "curs"} {
		d.Input(q)
	}

	require.Eventually(t, func() bool { return table.Model().FilteredCount == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "curs", table.State().GlobalFilter)
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func(int) {})
	assert.Equal(t, DefaultDebounce, d.delay)
}
