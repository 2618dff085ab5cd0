package ids

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Bits is the width of generated identifiers. The upper 16 bits of the int64 stay zero.
const Bits = 48

const mask = uint64(1)<<Bits - 1

// Generator produces new entity identifiers.
type Generator func() (int64, error)

// New returns a random, non-zero 48-bit identifier.
func New() (int64, error) {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[2:]); err != nil {
			return 0, fmt.Errorf("read random id: %w", err)
		}
		if id := int64(binary.BigEndian.Uint64(buf[:]) & mask); id != 0 {
			return id, nil
		}
	}
}

// Sequence returns a generator handing out the given ids in order, then failing.
// Used in tests.
func Sequence(values ...int64) Generator {
	i := 0
	return func() (int64, error) {
		if i >= len(values) {
			return 0, fmt.Errorf("id sequence exhausted after %d ids", len(values))
		}
		v := values[i]
		i++
		return v, nil
	}
}

// MaxInsertAttempts bounds Insert retries on id collisions.
const MaxInsertAttempts = 5

// Insert calls insert with fresh ids until it succeeds. A failure for which
// isCollision reports true is retried with a new id; any other failure is returned.
func Insert(newID Generator, isCollision func(error) bool, insert func(id int64) error) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < MaxInsertAttempts; attempt++ {
		id, err := newID()
		if err != nil {
			return 0, err
		}
		err = insert(id)
		if err == nil {
			return id, nil
		}
		if !isCollision(err) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("no free id after %d attempts: %w", MaxInsertAttempts, lastErr)
}
