// Package reportid mints the opaque public tokens used for anonymous
// report tracking. The token is the submitter's sole credential: it is
// generated before report creation and treated as an opaque string
// everywhere else.
package reportid

import (
	"math/rand"
	"sync"
	"time"
)

const allowedChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const idLen = 10

var (
	mu sync.Mutex
	r  = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// New returns a fresh public report identifier.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	b := make([]byte, idLen)
	for i := range b {
		b[i] = allowedChars[r.Intn(len(allowedChars))]
	}
	return string(b)
}
