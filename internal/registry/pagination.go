package registry

import (
	"encoding/base64"
	"sort"
)

// encodeCursor builds the opaque cursor from the last returned name.
func encodeCursor(lastName string) string {
	return base64.StdEncoding.EncodeToString([]byte(lastName))
}

// decodeCursor reverses encodeCursor. An invalid cursor is treated as the
// empty string, which yields the first page.
func decodeCursor(cursor string) string {
	if cursor == "" {
		return ""
	}
	b, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return ""
	}
	return string(b)
}

// paginate sorts items by name ascending, drops everything at or before
// cursor, and takes up to limit (nil meaning unbounded). Repeated
// application until nextCursor is empty yields the full sorted set with
// no gaps or duplicates.
func paginate[T any](items []T, nameOf func(T) string, cursor string, limit *int) (page []T, nextCursor string) {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return nameOf(sorted[i]) < nameOf(sorted[j]) })

	after := decodeCursor(cursor)
	start := 0
	if after != "" {
		start = sort.Search(len(sorted), func(i int) bool { return nameOf(sorted[i]) > after })
	}
	remaining := sorted[start:]

	if limit == nil || *limit <= 0 || *limit >= len(remaining) {
		return remaining, ""
	}
	page = remaining[:*limit]
	return page, encodeCursor(nameOf(page[len(page)-1]))
}
