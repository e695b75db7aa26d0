package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Check value from RFC 3720.
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))
	assert.NotEqual(t, CRC32C([]byte("LSHD\x00")), CRC32C([]byte("LSHD\x01")))
}
