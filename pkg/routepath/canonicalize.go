// Package routepath normalizes request paths before they reach the router.
//
// Every navigation, whether it arrives as an HTTP request or over the live
// channel, is canonicalized first so that "/blog//post/", "/blog/./post" and
// "/blog/post" all select the same route and the same cache keys.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Result is the outcome of canonicalizing a path.
type Result struct {
	// Path is the canonical path without query string. Always starts with "/".
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// URL returns the canonical path with its query string re-attached.
func (r Result) URL() string {
	if r.Query == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

// Canonicalization errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslash            = errors.New("path contains backslash")
	ErrNullByte             = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrEscapesRoot          = errors.New("path escapes root via ..")
	ErrEncodedSlash         = errors.New("encoded slash (%2F) in non-wildcard segment")
)

// Canonicalize normalizes a request path:
//   - a missing leading slash is added
//   - repeated slashes collapse (/blog//post -> /blog/post)
//   - "." segments are dropped and ".." pops the previous segment
//   - a trailing slash is removed, except for "/"
//
// Backslashes, NUL bytes, malformed percent escapes and ".." above the root
// are rejected. The query string is carried through untouched.
func Canonicalize(input string) (Result, error) {
	raw, query, _ := strings.Cut(input, "?")
	if raw == "" {
		return Result{Path: "/", Query: query, Changed: true}, nil
	}

	if strings.ContainsRune(raw, '\\') {
		return Result{}, ErrBackslash
	}
	if strings.ContainsRune(raw, 0) || strings.Contains(strings.ToUpper(raw), "%00") {
		return Result{}, ErrNullByte
	}
	if strings.ContainsRune(raw, '%') {
		if err := validateEscapes(raw); err != nil {
			return Result{}, err
		}
	}

	kept := make([]string, 0, strings.Count(raw, "/")+1)
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return Result{}, ErrEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	path := "/" + strings.Join(kept, "/")
	return Result{Path: path, Query: query, Changed: path != raw}, nil
}

// ValidateNavPath canonicalizes a path requested by a client for in-app
// navigation. Absolute and protocol-relative URLs are refused so a live
// navigation can never leave the site. The query string is preserved.
func ValidateNavPath(p string) (string, error) {
	if strings.HasPrefix(p, "//") || strings.Contains(p, "://") || !strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	res, err := Canonicalize(p)
	if err != nil {
		return "", err
	}
	return res.URL(), nil
}

// Segments splits a canonical path into its raw (still escaped) segments.
// The root path has no segments.
func Segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// DecodeSegment percent-decodes a single segment. Outside a wildcard an
// encoded slash is refused, otherwise "/a%2Fb" could smuggle an extra segment
// into a single parameter.
func DecodeSegment(segment string, wildcard bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !wildcard && strings.ContainsRune(decoded, '/') {
		return "", ErrEncodedSlash
	}
	return decoded, nil
}

func validateEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHex(path[i+1]) || !isHex(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
