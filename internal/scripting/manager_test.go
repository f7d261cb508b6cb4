package scripting_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/firefight/internal/game/dice"
	"github.com/cory-johannsen/firefight/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(dice.NewSeededSource(1), zap.New(core), 0)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func scriptFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	fsys := scriptFS(map[string]string{"ai/hooks.lua": `function add(a, b) return a + b end`})
	require.NoError(t, mgr.Load("scav", fsys, "ai"))
	assert.True(t, mgr.Has("scav"))

	ret, err := mgr.CallHook("scav", "add", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_CallHook_FallsBackToGlobal(t *testing.T) {
	mgr, _ := newTestManager(t)
	fsys := scriptFS(map[string]string{"ai/g.lua": `function who() return "global" end`})
	require.NoError(t, mgr.LoadGlobal(fsys, "ai"))

	ret, err := mgr.CallHook("faction_a", "who")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("global"), ret)
}

func TestManager_CallHook_PerHookFallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	fsys := scriptFS(map[string]string{
		"global/g.lua": `function who() return "global" end
function shared() return "global" end`,
		"scav/s.lua": `function who() return "scav" end`,
	})
	require.NoError(t, mgr.LoadGlobal(fsys, "global"))
	require.NoError(t, mgr.Load("scav", fsys, "scav"))

	ret, err := mgr.CallHook("scav", "who")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("scav"), ret)

	ret, err = mgr.CallHook("scav", "shared")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("global"), ret)
}

func TestManager_CallHook_MissingHookIsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(scriptFS(map[string]string{"ai/e.lua": `-- nothing`}), "ai"))
	ret, err := mgr.CallHook("scav", "absent")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_NoVMLogsInfo(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("scav", "choose_target")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: no VM for key").Len())
}

func TestManager_CallHook_RuntimeErrorLoggedNotReturned(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(scriptFS(map[string]string{"ai/bad.lua": `function boom() error("kaboom") end`}), "ai"))
	ret, err := mgr.CallHook("scav", "boom")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_CallHook_RunawayHookIsStopped(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(dice.NewSeededSource(1), zap.New(core), 200)
	defer mgr.Close()
	require.NoError(t, mgr.LoadGlobal(scriptFS(map[string]string{"ai/spin.lua": `function spin() while true do end end
function ok() return 1 end`}), "ai"))

	ret, err := mgr.CallHook(scripting.GlobalKey, "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())

	ret, err = mgr.CallHook(scripting.GlobalKey, "ok")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(1), ret)
}

func TestManager_Load_SyntaxError(t *testing.T) {
	mgr, _ := newTestManager(t)
	err := mgr.Load("scav", scriptFS(map[string]string{"ai/bad.lua": `function (`}), "ai")
	require.Error(t, err)
	assert.False(t, mgr.Has("scav"))
}

func TestManager_Load_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load("scav", fstest.MapFS{}, "ai"))
}

func TestManager_EngineModule(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(scriptFS(map[string]string{"ai/e.lua": `
function probe()
  local r = engine.random()
  assert(r >= 0 and r < 1)
  local n = engine.roll("2d6")
  assert(n >= 2 and n <= 12)
  engine.log("probed")
  return n
end`}), "ai"))
	ret, err := mgr.CallHook("scav", "probe")
	require.NoError(t, err)
	n, ok := ret.(lua.LNumber)
	require.True(t, ok)
	assert.GreaterOrEqual(t, float64(n), 2.0)
	assert.Equal(t, 1, logs.FilterMessage("script").Len())
}
