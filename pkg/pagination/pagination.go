// Package pagination pages over in-memory listings with opaque offset
// cursors.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows a single page can hold.
	MaxLimit = 100

	cursorPrefix = "o:"
)

// Params holds pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Requested reports whether the caller asked for a page at all.
func (p Params) Requested() bool {
	return p.Limit > 0 || strings.TrimSpace(p.Cursor) != ""
}

// Page is one slice of a listing. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	Total      int    `json:"total"`
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds the cursor pointing at offset.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// ParseCursor decodes a cursor back into an offset. An empty cursor is offset 0.
func ParseCursor(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	raw, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok {
		return 0, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid cursor offset")
	}
	return offset, nil
}

// Slice cuts the page described by params out of items. A cursor past the
// end yields an empty last page.
func Slice[T any](items []T, params Params) (Page[T], error) {
	offset, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, err
	}
	limit := NormalizeLimit(params.Limit)
	page := Page[T]{Items: []T{}, Total: len(items)}
	if offset >= len(items) {
		return page, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	page.Items = items[offset:end]
	if end < len(items) {
		page.NextCursor = EncodeCursor(end)
	}
	return page, nil
}
