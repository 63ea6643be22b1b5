package config

const (
	DefaultBaseDir = "~/.taskpro"
	DefaultDBName  = "taskpro.db"
	// MemoryDBName keeps everything in memory; nothing survives the process.
	MemoryDBName = ":memory:"

	DefaultTheme          = "dark"
	DefaultUndoWindowMS   = 4000
	DefaultSwipeThreshold = 80.0
	DefaultSwipeCellUnits = 10.0

	DefaultLogLevel = "info"
)
