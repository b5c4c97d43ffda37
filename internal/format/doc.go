// Package format renders durations and fitted quantities for display.
package format
