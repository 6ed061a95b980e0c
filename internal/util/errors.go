package util

import "errors"

var (
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrSessionEnded     = errors.New("session already completed")
	ErrTopicNotFound    = errors.New("grammar topic not found")
)
