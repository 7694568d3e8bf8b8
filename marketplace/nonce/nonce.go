package nonce

import (
	"strconv"
	"sync"
	"time"
)

// Nonce struct holds the nonce value
type Nonce struct {
	n int64
	m sync.Mutex
}

// NextMilli returns the millisecond Unix time of now, bumped past the
// previously issued value when two calls land in the same millisecond.
func (n *Nonce) NextMilli(now time.Time) Value {
	ms := now.UnixMilli()
	n.m.Lock()
	defer n.m.Unlock()
	if ms <= n.n {
		ms = n.n + 1
	}
	n.n = ms
	return Value(ms)
}

// Value is a nonce value issued by NextMilli
type Value int64

// String is a Value method that changes format to a string
func (v Value) String() string {
	return strconv.FormatInt(int64(v), 10)
}

// Time returns the value interpreted as a millisecond Unix time in UTC
func (v Value) Time() time.Time {
	return time.UnixMilli(int64(v)).UTC()
}
