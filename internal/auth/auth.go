// Package auth implements the RouterOS login challenge/response hash and
// the salt extraction policy used by the pre-6.43 MD5 fallback.
package auth

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/netwrk/gorouteros/internal/reply"
)

var ErrNoDoneResponse = errors.New("auth: no !done sentence in login reply")

// Hash computes the RouterOS MD5 challenge response for password against
// the hex-encoded salt returned by the server. The wire format is
// MD5(0x00 || password || salt-bytes), hex-encoded lowercase.
func Hash(password, hexSalt string) (string, error) {
	salt, err := hex.DecodeString(hexSalt)
	if err != nil {
		return "", fmt.Errorf("auth: invalid salt: %w", err)
	}
	h := md5.New()
	h.Write([]byte{0x00})
	h.Write([]byte(password))
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ExtractSalt scans a login reply block for the !done sentence's =ret=
// attribute. An absent =ret= on an existing !done is reported as an empty,
// valid salt (the session is already authenticated). A block without any
// !done sentence is a protocol error.
func ExtractSalt(block reply.Block) (string, error) {
	for _, sentence := range block {
		if reply.SentenceStatus(sentence) != reply.StatusDone {
			continue
		}
		for _, w := range sentence {
			k, v, ok := reply.ParseAttribute(w)
			if ok && k == "ret" {
				return v, nil
			}
		}
		return "", nil
	}
	return "", ErrNoDoneResponse
}
