package keymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializesSameKey(t *testing.T) {
	km := New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			km.Lock("u1")
			defer km.Unlock("u1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	km := New()

	km.Lock("a")
	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()
	<-done
	km.Unlock("a")
}

func TestEntriesAreDroppedWhenIdle(t *testing.T) {
	km := New()

	km.Lock("a")
	km.Unlock("a")

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.entries)
}
