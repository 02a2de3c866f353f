package parser

import (
	"crypto/md5"
	"fmt"
)

// Fingerprint hashes raw announcement text into the dedup key stored on a
// quiz. md5 is enough here: the key guards against re-posting the same
// message, it is not a security boundary.
func Fingerprint(text string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(text)))
}
