package service

import "errors"

// --- Error Definitions ---
var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrNoSource        = errors.New("workout has no archived source file")
	ErrFileTooLarge    = errors.New("file exceeds the maximum import size")
)
