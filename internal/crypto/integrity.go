package crypto

import (
	"fmt"
	"hash/crc32"
	"strings"
)

// ChecksumTag renders the CRC-32 (IEEE) of plaintext bytes as an 8-character
// uppercase zero-padded hex string. It detects accidental corruption and
// content drift between signing rounds; it is not a MAC.
func ChecksumTag(data []byte) string {
	return fmt.Sprintf("%08X", crc32.ChecksumIEEE(data))
}

// VerifyChecksumTag recomputes the tag and compares, ignoring case so tags
// that round-tripped through clients survive.
func VerifyChecksumTag(data []byte, expected string) bool {
	return ChecksumTag(data) == strings.ToUpper(expected)
}
