package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundMB(t *testing.T) {
	assert.InDelta(t, 1.91, roundMB(2_000_000), 0.001)
	assert.InDelta(t, 10.0, roundMB(10*1024*1024), 0.001)
	assert.InDelta(t, 0.0, roundMB(0), 0.001)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512000, "500.00 KB"},
		{1024, "1.00 KB"},
		{2_000_000, "1.91 MB"},
		{1024 * 1024, "1.00 MB"},
		{10*1024*1024 + 512*1024, "10.50 MB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.bytes))
	}
}
