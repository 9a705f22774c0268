// Package dedup canonicalizes article URLs, derives their fingerprints,
// and tracks which fingerprints have already been fully processed.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// trackingParams are query parameters that identify the click, not the
// article. Matched case-insensitively.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"fbclid":       {},
	"gclid":        {},
	"gclsrc":       {},
	"dclid":        {},
	"msclkid":      {},
	"ref":          {},
	"source":       {},
	"mc_cid":       {},
	"mc_eid":       {},
	"_ga":          {},
	"_gl":          {},
	"yclid":        {},
	"twclid":       {},
}

// Normalize returns the canonical form of a URL: lowercase scheme and
// host, no www. prefix, no trailing slash (except root), tracking
// parameters removed, surviving parameters sorted, fragment dropped.
// Idempotent: Normalize(Normalize(u)) == Normalize(u). Unparseable
// input is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	u.Host = host

	path := u.Path
	if path != "/" && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	u.Path = path

	q := u.Query()
	kept := url.Values{}
	for key, vals := range q {
		if _, tracking := trackingParams[strings.ToLower(key)]; tracking {
			continue
		}
		for _, v := range vals {
			if v != "" {
				kept.Add(key, v)
			}
		}
	}
	if len(kept) > 0 {
		keys := make([]string, 0, len(kept))
		for k := range kept {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			vals := kept[k]
			sort.Strings(vals)
			for _, v := range vals {
				if sb.Len() > 0 {
					sb.WriteByte('&')
				}
				sb.WriteString(url.QueryEscape(k))
				sb.WriteByte('=')
				sb.WriteString(url.QueryEscape(v))
			}
		}
		u.RawQuery = sb.String()
	} else {
		u.RawQuery = ""
	}

	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

// Fingerprint is the SHA-256 hex digest of the normalized URL, the
// primary key for an article across time.
func Fingerprint(rawURL string) string {
	sum := sha256.Sum256([]byte(Normalize(rawURL)))
	return hex.EncodeToString(sum[:])
}
