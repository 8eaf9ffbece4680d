package glyph

import (
	"slices"
	"strings"
	"sync"

	"github.com/kyokomi/emoji/v2"
)

// Table returns every known emoji, de-duplicated and sorted. It is built once and must not be modified.
var Table = sync.OnceValue(func() []string {
	seen := make(map[string]struct{})
	for _, code := range emoji.CodeMap() {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		seen[code] = struct{}{}
	}
	table := make([]string, 0, len(seen))
	for code := range seen {
		table = append(table, code)
	}
	slices.Sort(table)
	return table
})
