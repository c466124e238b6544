package delegation

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"hash/crc32"
	"strings"
)

// selfAuthenticatingTag marks principals derived from a public key.
const selfAuthenticatingTag = 0x02

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// PrincipalFromPublicKey derives the textual self-authenticating principal
// of a DER encoded public key: SHA-224 of the key plus a tag byte, prefixed
// by its CRC-32, base32 encoded in lowercase and grouped by five with dashes.
func PrincipalFromPublicKey(der []byte) string {
	sum := sha256.Sum224(der)
	return encodePrincipal(append(sum[:], selfAuthenticatingTag))
}

func encodePrincipal(raw []byte) string {
	buf := make([]byte, 4, 4+len(raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(raw))
	buf = append(buf, raw...)

	enc := strings.ToLower(principalEncoding.EncodeToString(buf))
	var b strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			b.WriteByte('-')
		}
		end := i + 5
		if end > len(enc) {
			end = len(enc)
		}
		b.WriteString(enc[i:end])
	}
	return b.String()
}
