// Package utils holds small helpers shared by the handlers and services.
package utils

import "strconv"

// IntOr parses s as a base-10 integer and returns def when s is empty or
// malformed. Surrounding whitespace is not trimmed.
func IntOr(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page is a normalized page request: Number is at least 1 and Size lies in
// [1, max].
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes a requested page. A non-positive size becomes defSize
// and anything above maxSize is capped.
func NewPage(number, size, defSize, maxSize int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = defSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	if size < 1 {
		size = 1
	}
	return Page{Number: number, Size: size}
}

// ParsePage reads the page number and size from query strings.
func ParsePage(number, size string, defSize, maxSize int) Page {
	return NewPage(IntOr(number, 1), IntOr(size, defSize), defSize, maxSize)
}

// Offset is the number of rows preceding the page.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Pages is the number of pages total rows fill.
func (p Page) Pages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether rows remain after this page.
func (p Page) HasNext(total int64) bool { return p.Number < p.Pages(total) }
