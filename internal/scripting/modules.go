package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/firefight/internal/game/dice"
)

// RegisterModules installs the engine table into L:
//
//	engine.random()      uniform number in [0, 1) from the injected source
//	engine.roll(expr)    total of a dice expression such as "1d6+1"
//	engine.log(msg)      debug log line tagged with the script key
//
// Precondition: L must come from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState, key string) {
	engine := L.NewTable()
	L.SetField(engine, "random", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.src.Float64()))
		return 1
	}))
	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := dice.RollExpr(L.CheckString(1), m.src)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(res.Total()))
		return 1
	}))
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("script", zap.String("key", key), zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("engine", engine)
}
