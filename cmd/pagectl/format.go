package main

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/pagekit/internal/format"
)

// numbers formats integers with digit grouping ("12,345").
var numbers = message.NewPrinter(language.English)

// formatSize renders a byte count for humans.
func formatSize(size int64) string {
	switch {
	case size < 1024:
		return numbers.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return numbers.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return numbers.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}

// formatPageID renders a page id, spelling out the sentinel.
func formatPageID(id format.PageID) string {
	if id == format.InvalidPageID {
		return "none"
	}
	return strconv.FormatUint(uint64(id), 10)
}

// parsePageID parses a decimal page id argument.
func parsePageID(s string) (format.PageID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid page id %q: %w", s, err)
	}
	return format.PageID(v), nil
}
