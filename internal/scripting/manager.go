package scripting

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/firefight/internal/game/dice"
)

// GlobalKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no VM is registered for a key.
const GlobalKey = "__global__"

// Manager owns one sandboxed LState per script key (an enemy type, or the
// global fallback) and dispatches hook calls to them.
//
// Manager is safe for concurrent use. Each LState is single-threaded, so
// calls are serialized by a mutex.
type Manager struct {
	mu     sync.Mutex
	states map[string]*lua.LState
	limit  int
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager whose scripts draw randomness from src.
//
// Precondition: src and logger must be non-nil; instLimit >= 0 (0 uses
// DefaultInstructionLimit).
func NewManager(src dice.Source, logger *zap.Logger, instLimit int) *Manager {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &Manager{
		states: make(map[string]*lua.LState),
		limit:  instLimit,
		src:    src,
		logger: logger,
	}
}

// Load creates a sandboxed VM for key and executes every *.lua file directly
// under dir in fsys in lexicographic order. A previous VM for key is closed.
//
// Postcondition: on error no VM is registered for key by this call.
func (m *Manager) Load(key string, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, key, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := NewSandboxedState()
	m.RegisterModules(L, key)
	for _, p := range files {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: reading %q for %q: %w", p, key, err)
		}
		if err := RunBudgeted(L, string(data), m.limit); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", p, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		old.Close()
	}
	m.states[key] = L
	m.mu.Unlock()
	m.logger.Debug("scripting: loaded", zap.String("key", key), zap.Int("files", len(files)))
	return nil
}

// LoadGlobal loads the fallback VM used by CallHook for keys without their
// own scripts.
func (m *Manager) LoadGlobal(fsys fs.FS, dir string) error {
	return m.Load(GlobalKey, fsys, dir)
}

// Has reports whether a VM is registered for key.
func (m *Manager) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[key]
	return ok
}

// CallHook calls the Lua global function hook in key's VM, falling back to
// the global VM when key has no VM or its scripts do not define hook. It returns (LNil, nil) when no VM exists or the hook is not
// defined. Lua runtime errors and exhausted budgets are logged at Warn level
// and never propagated.
//
// Postcondition: returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(key, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, fn := m.lookup(key, hook)
	if L == nil {
		m.logger.Info("scripting: no VM for key", zap.String("key", key), zap.String("hook", hook))
		return lua.LNil, nil
	}
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	err := withBudget(L, m.limit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// lookup returns the VM and function to call for hook. The returned VM is
// nil when neither key nor the global fallback has one.
//
// Precondition: m.mu is held.
func (m *Manager) lookup(key, hook string) (*lua.LState, lua.LValue) {
	var L *lua.LState
	for _, k := range []string{key, GlobalKey} {
		s, ok := m.states[k]
		if !ok {
			continue
		}
		L = s
		if fn := s.GetGlobal(hook); fn != lua.LNil {
			return s, fn
		}
	}
	return L, lua.LNil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, L := range m.states {
		L.Close()
		delete(m.states, k)
	}
}
