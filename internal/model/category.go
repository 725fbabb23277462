package model

import (
	"sort"
	"strings"

	"github.com/sadopc/junkclean/internal/pattern"
)

// Category groups found items for the breakdown view.
type Category int

const (
	CatOther Category = iota
	CatLogs
	CatTemp
	CatCache
	CatHistory
	CatSystem
)

// Categories lists every category in display order.
var Categories = []Category{CatLogs, CatTemp, CatCache, CatHistory, CatSystem, CatOther}

// CategoryName returns the display name for a category.
func CategoryName(cat Category) string {
	switch cat {
	case CatLogs:
		return "Logs"
	case CatTemp:
		return "Temporary"
	case CatCache:
		return "Caches"
	case CatHistory:
		return "History"
	case CatSystem:
		return "System"
	default:
		return "Other"
	}
}

// CategoryColor returns the theme color for a category.
func CategoryColor(cat Category) string {
	switch cat {
	case CatLogs:
		return "#E5C07B" // Yellow
	case CatTemp:
		return "#E06C75" // Red
	case CatCache:
		return "#61AFEF" // Blue
	case CatHistory:
		return "#98C379" // Green
	case CatSystem:
		return "#C678DD" // Purple
	default:
		return "#ABB2BF" // Gray
	}
}

// ruleMap maps lower-cased rule patterns to categories.
var ruleMap = map[string]Category{
	// Logs
	".log": CatLogs, ".crash": CatLogs, ".dmp": CatLogs, ".dump": CatLogs,
	"log": CatLogs, "logs": CatLogs, "btlog": CatLogs, "perflogs": CatLogs,
	"crash logs": CatLogs, "plugin crash logs": CatLogs, "crashreporter": CatLogs,
	"crasheslogbuffer": CatLogs, "com.tencent.bugly": CatLogs, "logs.db": CatLogs,

	// Temporary
	".tmp": CatTemp, ".temp": CatTemp, ".swp": CatTemp, ".$$$": CatTemp,
	".~": CatTemp, "tmp": CatTemp, "temp": CatTemp, ".trash": CatTemp,
	"$recycle.bin": CatTemp, "windows.old": CatTemp,

	// Caches
	".cache": CatCache, "(?i)cache": CatCache, ".thumbnails": CatCache,
	"thumbs.db": CatCache, "xl_sdks_kvstorage": CatCache,

	// History
	".bash_history": CatHistory, ".zsh_history": CatHistory, "fish_history": CatHistory,
	".python_history": CatHistory, ".viminfo": CatHistory, ".lesshst": CatHistory,
	".wget-hsts": CatHistory, "history.db": CatHistory, `\.zcompdump-.*`: CatHistory,
	".zsh_sessions": CatHistory, "callhistorydb": CatHistory,
	"callhistorytransactions": CatHistory, `.*\.savedstate$`: CatHistory,
	".idlerc": CatHistory, ".pyinspect": CatHistory,

	// System
	".ds_store": CatSystem, "desktop.ini": CatSystem, ".localized": CatSystem,
	".sharkgi": CatSystem, ".mailcap": CatSystem, ".mime.types": CatSystem,
	".fseventsd": CatSystem, ".spotlight-v100": CatSystem,
	"system volume information": CatSystem, "media.localized": CatSystem,
}

// Classify returns the category for the rule that matched an item.
// Patterns outside the built-in table fall back to keyword guesses.
func Classify(rule pattern.Rule) Category {
	p := strings.ToLower(rule.Pattern)
	if cat, ok := ruleMap[p]; ok {
		return cat
	}
	switch {
	case strings.Contains(p, "log"):
		return CatLogs
	case strings.Contains(p, "cache"):
		return CatCache
	case strings.Contains(p, "history"):
		return CatHistory
	case strings.Contains(p, "tmp"), strings.Contains(p, "temp"):
		return CatTemp
	}
	return CatOther
}

// CategoryStat aggregates found items of one category.
type CategoryStat struct {
	Category Category
	Size     int64
	Count    int
}

// Breakdown groups items by category, largest total first. Empty categories
// are omitted.
func Breakdown(items []FoundItem) []CategoryStat {
	byCat := make(map[Category]*CategoryStat)
	for _, it := range items {
		cat := Classify(it.Rule)
		st, ok := byCat[cat]
		if !ok {
			st = &CategoryStat{Category: cat}
			byCat[cat] = st
		}
		st.Size += it.Size
		st.Count++
	}

	stats := make([]CategoryStat, 0, len(byCat))
	for _, cat := range Categories {
		if st, ok := byCat[cat]; ok {
			stats = append(stats, *st)
		}
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Size > stats[j].Size })
	return stats
}
