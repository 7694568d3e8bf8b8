package nonce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "12312313131", Value(12312313131).String(), "String should format the nonce")
}

func TestNextMilli(t *testing.T) {
	t.Parallel()
	var nonce Nonce
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := nonce.NextMilli(now)
	assert.Equal(t, Value(now.UnixMilli()), first, "First value should be the clock reading")
	second := nonce.NextMilli(now)
	assert.Equal(t, first+1, second, "Same millisecond should be bumped by one")
	third := nonce.NextMilli(now.Add(-time.Second))
	assert.Equal(t, second+1, third, "A clock moving backwards should still produce a larger value")
	later := now.Add(time.Second)
	assert.Equal(t, Value(later.UnixMilli()), nonce.NextMilli(later), "A later clock reading should be used as is")
	assert.True(t, first.Time().Equal(now), "Time should convert back to the clock reading")
}

func TestNonceConcurrency(t *testing.T) {
	t.Parallel()
	var nonce Nonce
	now := time.Now()

	var wg sync.WaitGroup
	seen := make(chan Value, 1000)
	wg.Add(1000)
	for i := 0; i < 1000; i++ {
		go func() {
			seen <- nonce.NextMilli(now)
			wg.Done()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[Value]struct{}, 1000)
	for v := range seen {
		unique[v] = struct{}{}
	}
	assert.Len(t, unique, 1000, "Every concurrent caller should receive a distinct value")
}
