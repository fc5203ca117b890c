package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToken_Fresh(t *testing.T) {
	acquired := time.Now()

	tests := []struct {
		name  string
		now   time.Time
		fresh bool
	}{
		{name: "just acquired", now: acquired, fresh: true},
		{name: "well inside window", now: acquired.Add(30 * time.Minute), fresh: true},
		{name: "just before expiry", now: acquired.Add(FreshnessTTL - time.Second), fresh: true},
		{name: "exactly at expiry", now: acquired.Add(FreshnessTTL), fresh: false},
		{name: "past expiry", now: acquired.Add(2 * time.Hour), fresh: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Token{Value: "tok", AcquiredAt: acquired}
			assert.Equal(t, tt.fresh, tok.Fresh(tt.now))
		})
	}
}

func TestStore_Empty(t *testing.T) {
	store := NewStore()

	_, ok := store.Get()
	assert.False(t, ok, "empty store must report no token")
}

func TestStore_SetGetClear(t *testing.T) {
	store := NewStore()

	tok := Token{Value: "tok1", AcquiredAt: time.Now()}
	store.Set(tok)

	got, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, tok, got)

	// Set replaces, never merges.
	tok2 := Token{Value: "tok2", AcquiredAt: time.Now()}
	store.Set(tok2)

	got, ok = store.Get()
	assert.True(t, ok)
	assert.Equal(t, "tok2", got.Value)

	store.Clear()
	_, ok = store.Get()
	assert.False(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			store.Set(Token{Value: "tok", AcquiredAt: time.Now()})
		}()
		go func() {
			defer wg.Done()
			store.Get()
		}()
		go func() {
			defer wg.Done()
			store.Clear()
		}()
	}
	wg.Wait()

	// Last writer wins; either outcome is a consistent state.
	if tok, ok := store.Get(); ok {
		assert.Equal(t, "tok", tok.Value)
	}
}
