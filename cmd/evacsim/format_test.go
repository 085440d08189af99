package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jancidakis/nasa-pathfinding/pkg/sim"
)

func TestSummarizeByProfile(t *testing.T) {
	stats := summarizeByProfile([]sim.AgentResult{
		{ProfileID: "elderly", Evacuated: true, EvacuationTime: 10, Distance: 8},
		{ProfileID: "adult", Evacuated: true, EvacuationTime: 4, Distance: 5},
		{ProfileID: "adult", Evacuated: true, EvacuationTime: 6, Distance: 7},
		{ProfileID: "adult", Distance: 0},
	})
	require.Len(t, stats, 2)

	adult := stats[0]
	assert.Equal(t, "adult", adult.Profile)
	assert.Equal(t, 3, adult.Agents)
	assert.Equal(t, 2, adult.Evacuated)
	assert.InDelta(t, 5, adult.MeanTime, 1e-9)
	assert.InDelta(t, 6, adult.MaxTime, 1e-9)
	assert.InDelta(t, 4, adult.MeanDist, 1e-9)

	assert.Equal(t, "elderly", stats[1].Profile)
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0s"},
		{4.26, "4.3s"},
		{75.5, "1m15.5s"},
		{125, "2m05.0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSeconds(tt.in))
	}
}
