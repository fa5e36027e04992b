//go:build tools
// +build tools

// Package tools tracks the tools invoked by go generate, mockgen, as module dependencies.
package chat_rooms

import (
	_ "go.uber.org/mock/mockgen"
)
