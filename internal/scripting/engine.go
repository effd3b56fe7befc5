package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for furniture rules.
// Single-goroutine access only (game loop). Results that tiles need are cached
// on the furniture, so Lua never runs inside a tile's critical section.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Core helpers first, then furniture rules
	for _, sub := range []string{"core", "furniture"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// NewEngineFromSource creates an engine from an in-memory chunk.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lua source: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// FurnitureContext is what a furniture rule sees.
type FurnitureContext struct {
	DefID       int
	Interaction string
	State       int
	States      int  // number of states the definition cycles through
	CanWalk     bool // static flag from the definition
}

// FurnitureWalkable calls the Lua can_walk_furniture function. Missing
// function, errors and nil returns fall back to the static flag.
func (e *Engine) FurnitureWalkable(ctx FurnitureContext) bool {
	fn := e.vm.GetGlobal("can_walk_furniture")
	if fn == lua.LNil {
		return ctx.CanWalk
	}

	t := e.furnitureTable(ctx)
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua can_walk_furniture error", zap.Error(err))
		return ctx.CanWalk
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return ctx.CanWalk
	}
	return lua.LVAsBool(result)
}

// NextFurnitureState calls the Lua next_furniture_state function to cycle an
// item's interaction state on use. Without a script the state wraps modulo
// States.
func (e *Engine) NextFurnitureState(ctx FurnitureContext) int {
	fallback := 0
	if ctx.States > 1 {
		fallback = (ctx.State + 1) % ctx.States
	}

	fn := e.vm.GetGlobal("next_furniture_state")
	if fn == lua.LNil {
		return fallback
	}

	t := e.furnitureTable(ctx)
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua next_furniture_state error", zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		return fallback
	}
	return int(n)
}

func (e *Engine) furnitureTable(ctx FurnitureContext) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("def_id", lua.LNumber(ctx.DefID))
	t.RawSetString("interaction", lua.LString(ctx.Interaction))
	t.RawSetString("state", lua.LNumber(ctx.State))
	t.RawSetString("states", lua.LNumber(ctx.States))
	t.RawSetString("can_walk", lua.LBool(ctx.CanWalk))
	return t
}
