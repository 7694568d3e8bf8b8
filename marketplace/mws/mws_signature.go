package mws

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/thrasher-corp/feeestimator/common/crypto"
)

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether c falls outside the RFC 3986 unreserved set
func shouldEscape(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return false
	case c == '-', c == '_', c == '.', c == '~':
		return false
	}
	return true
}

// escape percent-encodes every byte of s outside the unreserved set
func escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !shouldEscape(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// BuildCanonicalQuery returns the deterministic query string the signature is
// computed over: keys and values strictly percent-encoded, pairs ordered by
// encoded key and joined with '&'.
func BuildCanonicalQuery(params ParameterMap) (string, error) {
	type pair struct {
		key, value string
	}
	pairs := make([]pair, 0, len(params))
	for k, v := range params {
		if !utf8.ValidString(k) {
			return "", fmt.Errorf("%w: parameter key %q is not valid UTF-8", ErrEncoding, k)
		}
		if !utf8.ValidString(v) {
			return "", fmt.Errorf("%w: value of parameter %q is not valid UTF-8", ErrEncoding, k)
		}
		pairs = append(pairs, pair{escape(k), escape(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].key < pairs[j].key
	})

	var b strings.Builder
	for i := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(pairs[i].key)
		b.WriteByte('=')
		b.WriteString(pairs[i].value)
	}
	return b.String(), nil
}

// Sign computes the version 2 signature over
// method\nhost\npath\ncanonicalQuery and returns it base64 then
// percent-encoded for embedding in a URL.
func Sign(method, host, path, canonicalQuery string, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: secret key is empty", ErrConfiguration)
	}
	payload := method + "\n" + host + "\n" + path + "\n" + canonicalQuery
	hmac, err := crypto.GetHMAC(crypto.HashSHA256, []byte(payload), secret)
	if err != nil {
		return "", err
	}
	return escape(crypto.Base64Encode(hmac)), nil
}
