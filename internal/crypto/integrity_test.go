package crypto

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumTagFormat(t *testing.T) {
	hexUpper := regexp.MustCompile(`^[0-9A-F]{8}$`)

	for _, data := range [][]byte{nil, []byte(""), []byte("x"), []byte("some document content")} {
		tag := ChecksumTag(data)
		assert.Regexp(t, hexUpper, tag)
	}

	// CRC32("") is zero, which exercises the zero padding.
	assert.Equal(t, "00000000", ChecksumTag(nil))
}

func TestChecksumTagDeterministic(t *testing.T) {
	data := []byte("same bytes, same tag")
	assert.Equal(t, ChecksumTag(data), ChecksumTag(data))
}

func TestChecksumTagDetectsEdits(t *testing.T) {
	data := []byte("original document content")
	tag := ChecksumTag(data)

	for i := range data {
		edited := append([]byte(nil), data...)
		edited[i] ^= 0x01
		assert.NotEqual(t, tag, ChecksumTag(edited), "edit at byte %d went undetected", i)
	}
}

func TestVerifyChecksumTag(t *testing.T) {
	data := []byte("payload")
	tag := ChecksumTag(data)

	assert.True(t, VerifyChecksumTag(data, tag))
	assert.True(t, VerifyChecksumTag(data, strings.ToLower(tag)), "tags that round-tripped through clients may be lowercased")
	assert.False(t, VerifyChecksumTag([]byte("other payload"), tag))
	assert.False(t, VerifyChecksumTag(data, "00000000"))
}
