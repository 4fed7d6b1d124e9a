package bucketgate

import (
	"strings"
)

// ResolvePath joins an optional path prefix and a filename into a relative
// storage key. An empty path yields the filename unchanged. Otherwise at most
// one trailing and then one leading "/" is stripped from path before joining.
//
//	ResolvePath("a.txt", "")          // "a.txt"
//	ResolvePath("a.txt", "/docs/x/")  // "docs/x/a.txt"
//	ResolvePath("a.txt", "//docs//")  // "/docs//a.txt"
func ResolvePath(filename, path string) string {
	if path == "" {
		return filename
	}

	path = strings.TrimSuffix(path, "/")
	path = strings.TrimPrefix(path, "/")

	return path + "/" + filename
}

// IsValidUsername reports whether name can own a namespace. A username is the
// first segment of every key it owns, so it must be non-empty, must not
// contain "/" or control characters, and must not be "." or "..".
func IsValidUsername(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		if r == '/' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// ObjectKey returns the full backend key for a relative key owned by owner.
func ObjectKey(owner, rel string) string {
	return owner + "/" + rel
}

// IsValidPath reports whether a relative key is safe to place under an owner
// namespace. Every "/"-separated segment must be non-empty and must not be
// "." or "..", and the key must not contain NUL, control characters or DEL.
// Any other character, including spaces and punctuation such as # ? ~, is
// accepted.
func IsValidPath(p string) bool {
	if p == "" {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".", "..":
			return false
		}
	}

	return true
}
