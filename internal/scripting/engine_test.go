package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const gateRules = `
function can_walk_furniture(ctx)
  if ctx.interaction == "gate" then
    return ctx.state == 1
  end
  return ctx.can_walk
end

function next_furniture_state(ctx)
  return (ctx.state + 1) % ctx.states
end
`

func TestFurnitureWalkable_Gate(t *testing.T) {
	e, err := NewEngineFromSource(gateRules, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	closed := FurnitureContext{Interaction: "gate", State: 0, States: 2}
	open := FurnitureContext{Interaction: "gate", State: 1, States: 2}
	rug := FurnitureContext{Interaction: "default", CanWalk: true}

	assert.False(t, e.FurnitureWalkable(closed))
	assert.True(t, e.FurnitureWalkable(open))
	assert.True(t, e.FurnitureWalkable(rug))
	assert.Equal(t, 1, e.NextFurnitureState(closed))
	assert.Equal(t, 0, e.NextFurnitureState(open))
}

func TestFurnitureWalkable_FallsBackWithoutScript(t *testing.T) {
	e, err := NewEngineFromSource("", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.FurnitureWalkable(FurnitureContext{CanWalk: true}))
	assert.False(t, e.FurnitureWalkable(FurnitureContext{CanWalk: false}))
	assert.Equal(t, 2, e.NextFurnitureState(FurnitureContext{State: 1, States: 3}))
	assert.Equal(t, 0, e.NextFurnitureState(FurnitureContext{State: 4, States: 0}))
}

func TestFurnitureWalkable_ScriptError(t *testing.T) {
	e, err := NewEngineFromSource(`function can_walk_furniture(ctx) error("boom") end`, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.FurnitureWalkable(FurnitureContext{CanWalk: true}))
}

func TestNewEngine_LoadsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "furniture"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "furniture", "walk.lua"), []byte(gateRules), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "furniture", "notes.txt"), []byte("ignored"), 0o644))

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.FurnitureWalkable(FurnitureContext{Interaction: "gate", State: 1, States: 2}))
}

func TestNewEngine_BadScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "bad.lua"), []byte("this is not lua ("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}
