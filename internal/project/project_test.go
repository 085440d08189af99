package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jancidakis/nasa-pathfinding/internal/config"
	"github.com/Jancidakis/nasa-pathfinding/internal/metrics"
	"github.com/Jancidakis/nasa-pathfinding/pkg/pathfind"
	"github.com/Jancidakis/nasa-pathfinding/pkg/profile"
)

func TestLoadTwoRooms(t *testing.T) {
	p, err := Load("../../examples/two-rooms")
	require.NoError(t, err)

	assert.Equal(t, "Casa de prueba", p.Building.Name)
	assert.Equal(t, int64(42), p.Config.Seed)
	assert.Len(t, p.Graphs, 2)
	require.Len(t, p.Egress, 2)
	assert.Zero(t, p.Egress[0].Unreachable)
	assert.Equal(t, 1, p.Egress[1].Exits)
	assert.NotNil(t, p.Scene)
	assert.True(t, p.Report.Valid, "report: %+v", p.Report.Errors)

	adult, ok := p.Profiles.Lookup("adult")
	require.True(t, ok)
	assert.InDelta(t, 1.4, adult.Speed, 1e-9)
	_, ok = p.Profiles.Lookup("child")
	assert.False(t, ok, "project catalog should replace the built-in one")
}

func TestLoadOfficeUsesBuiltInProfiles(t *testing.T) {
	reg := metrics.NewRegistry()
	p, err := Load("../../examples/office", WithConfig(config.Default()), WithMetrics(reg))
	require.NoError(t, err)

	assert.Equal(t, len(profile.Default()), len(p.Profiles))
	assert.NotEmpty(t, p.Report.Find(profile.FileName))

	// Schema and graph build both notice the ambiguous door; it is reported once.
	assert.Len(t, p.Report.Find("levels[0].areas[1].doors[0].connects_to"), 1)
	assert.NotEmpty(t, p.Report.Find("levels[0].areas[4].position"))
}

func TestLoadMissingProject(t *testing.T) {
	_, err := Load(t.TempDir(), WithConfig(config.Default()))
	assert.Error(t, err)
}

func TestNewSimulation(t *testing.T) {
	p, err := Load("../../examples/two-rooms")
	require.NoError(t, err)

	s, err := p.NewSimulation()
	require.NoError(t, err)
	a, err := s.AddAgent(0, "adult")
	require.NoError(t, err)
	assert.Equal(t, 0, a.LevelIndex)

	p.Config.ExitTarget = "window"
	_, err = p.NewSimulation()
	assert.Error(t, err)
}

func TestRouteFromArea(t *testing.T) {
	p, err := Load("../../examples/two-rooms")
	require.NoError(t, err)

	exit, route, err := p.RouteFromArea(0, "Cocina")
	require.NoError(t, err)
	assert.Equal(t, "SALA", exit.Area)
	assert.Equal(t, pathfind.FallbackNone, route.Fallback)
	assert.Equal(t, exit.Position, route.Waypoints[len(route.Waypoints)-1])

	tests := []struct {
		name  string
		level int
		area  string
		want  error
	}{
		{"level below range", -1, "SALA", ErrLevelNotFound},
		{"level above range", 2, "SALA", ErrLevelNotFound},
		{"unknown area", 0, "GARAJE", ErrAreaNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := p.RouteFromArea(tt.level, tt.area)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRouteFromUnpositionedArea(t *testing.T) {
	p, err := Load("../../examples/office", WithConfig(config.Default()))
	require.NoError(t, err)
	_, _, err = p.RouteFromArea(0, "ARCHIVO")
	assert.ErrorIs(t, err, ErrUnpositioned)
}
