package model

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SortField defines what to sort by.
type SortField int

const (
	SortBySize SortField = iota
	SortByPath
	SortByMtime
	SortByKind
)

func (f SortField) String() string {
	switch f {
	case SortByPath:
		return "Path"
	case SortByMtime:
		return "Modified"
	case SortByKind:
		return "Kind"
	default:
		return "Size"
	}
}

// SortOrder defines ascending or descending.
type SortOrder int

const (
	SortDesc SortOrder = iota
	SortAsc
)

// SortConfig holds sort preferences.
type SortConfig struct {
	Field SortField
	Order SortOrder
}

// DefaultSort returns the default sort config (size descending).
func DefaultSort() SortConfig {
	return SortConfig{Field: SortBySize, Order: SortDesc}
}

// SortItems sorts items in place. Ties keep their discovery order.
func SortItems(items []FoundItem, cfg SortConfig) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		// Swapping for descending keeps equal items returning false.
		if cfg.Order == SortDesc {
			a, b = b, a
		}

		switch cfg.Field {
		case SortByPath:
			return natural.Less(strings.ToLower(a.Path), strings.ToLower(b.Path))
		case SortByMtime:
			return a.ModTime.Before(b.ModTime)
		case SortByKind:
			return a.Kind < b.Kind
		default:
			return a.Size < b.Size
		}
	})
}
