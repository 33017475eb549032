package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusCandidates(t *testing.T) {
	ports := []string{
		"/dev/cu.Bluetooth-Incoming-Port",
		"/dev/cu.usbmodem58FA0829321",
		"/dev/cu.debug-console",
		"/dev/ttyUSB0",
	}
	assert.Equal(t, []string{"/dev/cu.usbmodem58FA0829321", "/dev/ttyUSB0"}, busCandidates(ports))
	assert.Empty(t, busCandidates(nil))
}
