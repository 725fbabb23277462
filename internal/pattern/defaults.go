package pattern

// Default returns the built-in junk tables.
func Default() *Set {
	return New(defaultNames(), defaultExtensions, defaultFolders())
}

func defaultNames() []Pattern {
	return []Pattern{
		Literal(".DS_Store"),
		Literal(".viminfo"),
		Literal(".localized"),
		Literal(".sharkgi"),
		Literal(".lesshst"),
		Literal(".wget-hsts"),
		Literal(".mailcap"),
		Literal(".mime.types"),
		Literal(".python_history"),
		Literal(".bash_history"),
		Literal(".zsh_history"),
		Literal("fish_history"),
		Literal("Logs.db"),
		Literal("history.db"),
		Literal("Thumbs.db"),
		Literal("desktop.ini"),
		Regexp(`\.zcompdump-.*`),
	}
}

var defaultExtensions = []string{
	".log",
	".tmp",
	".temp",
	".cache",
	".swp",
	".dmp",
	".dump",
	".crash",
	".$$$",
	".~",
}

func defaultFolders() []Pattern {
	return []Pattern{
		Literal("log"),
		Literal("logs"),
		Literal("tmp"),
		Literal("temp"),
		Literal(".pyinspect"),
		Literal(".idlerc"),
		Literal(".thumbnails"),
		Literal(".fseventsd"),
		Literal(".Spotlight-V100"),
		Literal(".zsh_sessions"),
		Literal(".Trash"),
		Literal("CallHistoryDB"),
		Literal("CallHistoryTransactions"),
		Literal("BtLog"),
		Literal("Crash Logs"),
		Literal("Plugin Crash Logs"),
		Literal("com.tencent.bugly"),
		Literal("CrashesLogBuffer"),
		Literal("CrashReporter"),
		Literal("Photo Booth Library"),
		Literal("Videos Library.tvlibrary"),
		Literal("Media.localized"),
		Literal("Automatically Add to Music.localized"),
		Literal("$RECYCLE.BIN"),
		Literal("System Volume Information"),
		Literal("Windows.old"),
		Literal("PerfLogs"),
		Literal("xl_sdks_kvstorage"),
		Literal("网易云音乐"),
		Regexp(`(?i)Cache`),
		Regexp(`.*\.savedState$`),
	}
}
