// Package ui provides theme and color support for the command-line output.
// It defines ANSI color schemes for status lines and lipgloss palettes for
// the comparison tables, honoring NO_COLOR and the --no-color flag.
//
// This package is a shared dependency for packages that need color output,
// reducing coupling between the fitting logic and presentation.
package ui
