package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Run("round trips worker and local ids", func(t *testing.T) {
		id := Encode(3, 42)
		assert.Equal(t, uint8(3), WorkerID(id))
		assert.Equal(t, uint32(42), LocalID(id))
	})

	t.Run("worker id occupies the upper byte", func(t *testing.T) {
		id := Encode(1, 1)
		assert.Equal(t, ServiceID(0x01000001), id)
	})

	t.Run("masks local id to 24 bits", func(t *testing.T) {
		id := Encode(2, 0xFFFFFFFF)
		assert.Equal(t, uint32(0x00FFFFFF), LocalID(id))
		assert.Equal(t, uint8(2), WorkerID(id))
	})

	t.Run("every worker in range round trips", func(t *testing.T) {
		for w := MinWorkerID; ; w++ {
			id := Encode(w, 7)
			assert.Equal(t, w, WorkerID(id))
			if w == MaxWorkerID {
				break
			}
		}
	})
}

func TestValid(t *testing.T) {
	t.Run("zero id is invalid", func(t *testing.T) {
		assert.False(t, Valid(0))
	})

	t.Run("zero worker id is invalid", func(t *testing.T) {
		assert.False(t, Valid(Encode(0, 1)))
	})

	t.Run("zero local id is invalid", func(t *testing.T) {
		assert.False(t, Valid(Encode(1, 0)))
	})

	t.Run("well-formed id is valid", func(t *testing.T) {
		assert.True(t, Valid(Encode(1, 1)))
		assert.True(t, Valid(Encode(255, 0xABCDEF)))
	})
}
