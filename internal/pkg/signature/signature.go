package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"

	"github.com/hemantwpdev/post-sync-translate/internal/pkg/urlutil"
)

// Sign computes an HMAC-SHA256 over the canonical JSON form of body.
// encoding/json marshals map keys in sorted order with no insignificant
// whitespace, so both ends produce the same byte string as long as the
// field set matches. The "signature" field must never be part of body.
func Sign(body map[string]interface{}, key string) (string, error) {
	canonical, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the signature and compares in constant time.
func Verify(body map[string]interface{}, key string, sig string) bool {
	computed, err := Sign(body, key)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(computed), []byte(sig))
}

// SameHost compares the host components of two URLs in constant time.
// Advisory only: the HMAC binds body and key together, domain matching
// is not a security boundary on its own.
func SameHost(a, b string) bool {
	ha := urlutil.Host(urlutil.Canonicalize(a))
	hb := urlutil.Host(urlutil.Canonicalize(b))
	if ha == "" || hb == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(ha), []byte(hb)) == 1
}
