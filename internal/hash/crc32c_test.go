package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// RFC 3720 B.4 test vector.
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))

	h := NewCRC32C()
	_, _ = h.Write([]byte("1234"))
	_, _ = h.Write([]byte("56789"))
	assert.Equal(t, CRC32C([]byte("123456789")), h.Sum32())
}

func TestBase64CRC32C(t *testing.T) {
	assert.Equal(t, "4waSgw==", Base64CRC32C([]byte("123456789")))
	assert.Equal(t, "AAAAAA==", Base64CRC32C(nil))
}
