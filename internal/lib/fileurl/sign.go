// Package fileurl provides HMAC-signed URL generation and verification for
// policy document downloads. URLs expire after a configurable TTL.
package fileurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// SignURL returns a relative URL path with HMAC signature and expiry query parameters.
// The signature covers "{product}/{journeyID}/{docID}:{expiresUnix}" using HMAC-SHA256.
func SignURL(product, journeyID, docID, secret string, ttl time.Duration, now time.Time) string {
	expires := now.Add(ttl).Unix()
	sig := computeHMAC(resource(product, journeyID, docID), expires, secret)
	return fmt.Sprintf("/files/%s/%s/%s?expires=%d&sig=%s",
		url.PathEscape(product), url.PathEscape(journeyID), url.PathEscape(docID), expires, sig)
}

// Verify checks that the HMAC signature is valid and the URL has not expired.
func Verify(product, journeyID, docID, expires, sig, secret string, now time.Time) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	if now.Unix() > exp {
		return false
	}
	expected := computeHMAC(resource(product, journeyID, docID), exp, secret)
	return hmac.Equal([]byte(sig), []byte(expected))
}

func resource(product, journeyID, docID string) string {
	return product + "/" + journeyID + "/" + docID
}

func computeHMAC(resource string, expires int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%s:%d", resource, expires)))
	return hex.EncodeToString(mac.Sum(nil))
}
