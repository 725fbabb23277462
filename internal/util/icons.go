package util

// Status icons shown next to progress and result messages.
const (
	IconScan    = "🔍"
	IconClean   = "🧹"
	IconDone    = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
)

// Icon returns the icon for a found item.
func Icon(isDir bool) string {
	if isDir {
		return "📁"
	}
	return "📄"
}

// Check returns the selection mark for a table row.
func Check(selected bool) string {
	if selected {
		return "✓"
	}
	return " "
}
