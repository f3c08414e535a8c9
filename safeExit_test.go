package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeExit_CleanupRunsInReverseOnce(t *testing.T) {
	s := new(SafeExit)
	var order []string
	s.Register(func() { order = append(order, "close log file") })
	s.Register(func() { order = append(order, "flush missing tiles") })

	s.Cleanup()
	s.Cleanup()

	assert.Equal(t, []string{"flush missing tiles", "close log file"}, order)
}
