// Package nvp implements PayPal's legacy name-value-pair wire format:
// application/x-www-form-urlencoded with HTML-entity-escaped values.
package nvp

import (
	"html"
	"net/url"
	"strconv"
	"strings"
)

type pair struct {
	key   string
	value string
}

// Values is an ordered string mapping. Order matters: indexed line-item
// fields (L_PAYMENTREQUEST_0_NAMEn) are positional on the wire.
type Values struct {
	pairs []pair
	index map[string]int
}

func New() *Values {
	return &Values{index: make(map[string]int)}
}

// Set adds the key or overwrites an existing one in place.
func (v *Values) Set(key, value string) {
	if i, ok := v.index[key]; ok {
		v.pairs[i].value = value
		return
	}
	v.index[key] = len(v.pairs)
	v.pairs = append(v.pairs, pair{key: key, value: value})
}

// SetIndexed sets an indexed field, e.g. SetIndexed("L_PAYMENTREQUEST_0_NAME", 2, x)
// -> L_PAYMENTREQUEST_0_NAME2.
func (v *Values) SetIndexed(prefix string, n int, value string) {
	v.Set(prefix+strconv.Itoa(n), value)
}

func (v *Values) Get(key string) string {
	if i, ok := v.index[key]; ok {
		return v.pairs[i].value
	}
	return ""
}

func (v *Values) Has(key string) bool {
	_, ok := v.index[key]
	return ok
}

func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.pairs)
}

// Keys returns the keys in insertion order.
func (v *Values) Keys() []string {
	keys := make([]string, len(v.pairs))
	for i, p := range v.pairs {
		keys[i] = p.key
	}
	return keys
}

// Merge copies every pair of other into v, preserving other's order.
// Existing keys are overwritten.
func (v *Values) Merge(other *Values) {
	if other == nil {
		return
	}
	for _, p := range other.pairs {
		v.Set(p.key, p.value)
	}
}

// Encode renders url-encoded bytes with HTML-entity-safe values, preserving order.
func (v *Values) Encode() []byte {
	var b strings.Builder
	for i, p := range v.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(html.EscapeString(p.value)))
	}
	return []byte(b.String())
}

// Decode parses url-encoded bytes, HTML-entity-decoding each value.
// It never fails: pairs that cannot be decoded are skipped, and malformed
// input yields an empty mapping. The IPN receiver depends on this so
// attacker-controlled bodies degrade to "ignored", never to a crash.
func Decode(body []byte) *Values {
	v := New()
	for _, chunk := range strings.Split(string(body), "&") {
		if chunk == "" {
			continue
		}
		key, raw, _ := strings.Cut(chunk, "=")
		k, err := url.QueryUnescape(key)
		if err != nil || k == "" {
			continue
		}
		val, err := url.QueryUnescape(raw)
		if err != nil {
			continue
		}
		v.Set(k, html.UnescapeString(val))
	}
	return v
}
