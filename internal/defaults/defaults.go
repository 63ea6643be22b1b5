// Package defaults holds built-in values shared by the store and the front ends.
package defaults

import "time"

// SeedTexts are the tasks a fresh installation starts with.
var SeedTexts = []string{
	"Welcome to TaskPro 👋",
	"Drag or swipe tasks",
}

const (
	// UndoWindow is how long a deletion can be reversed.
	UndoWindow = 4000 * time.Millisecond

	// SwipeThreshold is the horizontal distance past which a swipe acts.
	SwipeThreshold = 80.0

	// SwipeCellUnits converts one terminal column of mouse drag into swipe units.
	SwipeCellUnits = 10.0

	// Theme is used when nothing is persisted.
	Theme = "dark"

	// AppName names the data directory, log prefix and export titles.
	AppName = "TaskPro"
)
