package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReleasedKeysArePruned(t *testing.T) {
	l := New()
	for _, key := range []string{"motor:j1", "motor:j2", "motor:j3"} {
		l.Lock(key)
		assert.Equal(t, 1, l.Len())
		l.Unlock(key)
	}
	assert.Zero(t, l.Len())
}

func TestUnlockUnknownKey(t *testing.T) {
	l := New()
	assert.NotPanics(t, func() { l.Unlock("missing") })
	assert.Zero(t, l.Len())
}

func TestSameKeyIsSerialized(t *testing.T) {
	l := New()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("motor:j1")
			defer l.Unlock("motor:j1")

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, l.Len())
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	l := New()
	l.Lock("motor:j1")
	defer l.Unlock("motor:j1")

	done := make(chan struct{})
	go func() {
		l.Lock("motor:j2")
		l.Unlock("motor:j2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key blocked")
	}
	assert.Equal(t, 1, l.Len())
}
