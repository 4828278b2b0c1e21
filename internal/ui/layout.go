package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the workouts table
	// drops the location column.
	LayoutCompactWidth = 90

	// FormWidth is the width of the sign-in and registration panels.
	FormWidth = 56
)

// Activity screen limits.
const (
	// ActivityLines is how many log records the Activity screen keeps.
	ActivityLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval drives the Activity refresh and the workouts
	// auto-refresh check.
	DefaultUIInterval = time.Second

	// ToastTTL is how long a toast stays on screen.
	ToastTTL = 4 * time.Second
)
