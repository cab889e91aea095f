package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name     string
		workflow time.Duration
		want     time.Duration
	}{
		{"bounded workflow", 180 * time.Second, 190 * time.Second},
		{"no workflow deadline", 0, 0},
		{"negative treated as none", -time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writeTimeout(tt.workflow))
		})
	}
}
