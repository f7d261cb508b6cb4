package combat

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ScriptCaller is the interface required to consult Lua tactics scripts.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the VM registered for key.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(key, hook string, args ...lua.LValue) (lua.LValue, error)
}

// ScriptedAdvisor is a TargetAdvisor backed by the Lua hooks
// choose_target(self, player) and flank_chance(self, player, base).
// Scripts are keyed by the enemy's EnemyType.
type ScriptedAdvisor struct {
	caller ScriptCaller
}

// NewScriptedAdvisor creates a ScriptedAdvisor.
//
// Precondition: caller must not be nil.
func NewScriptedAdvisor(caller ScriptCaller) *ScriptedAdvisor {
	if caller == nil {
		panic("combat.NewScriptedAdvisor: caller must not be nil")
	}
	return &ScriptedAdvisor{caller: caller}
}

// ChooseTarget returns the part named by choose_target. Unknown names and
// non-string results defer to the built-in policy.
func (a *ScriptedAdvisor) ChooseTarget(enemy, player *Combatant) (BodyPartType, bool) {
	ret, err := a.caller.CallHook(string(enemy.EnemyType), "choose_target", combatantTable(enemy), combatantTable(player))
	if err != nil {
		return Thorax, false
	}
	s, ok := ret.(lua.LString)
	if !ok {
		return Thorax, false
	}
	switch strings.ToLower(string(s)) {
	case "head":
		return Head, true
	case "thorax":
		return Thorax, true
	case "arm":
		return Arm, true
	case "leg":
		return Leg, true
	}
	return Thorax, false
}

// FlankChance returns the number produced by flank_chance, or base when the
// hook is missing or returns a non-number.
func (a *ScriptedAdvisor) FlankChance(enemy, player *Combatant, base float64) float64 {
	ret, err := a.caller.CallHook(string(enemy.EnemyType), "flank_chance",
		combatantTable(enemy), combatantTable(player), lua.LNumber(base))
	if err != nil {
		return base
	}
	if n, ok := ret.(lua.LNumber); ok {
		return float64(n)
	}
	return base
}

// combatantTable snapshots c as a Lua table. The table is detached from the
// combatant; scripts cannot mutate engine state through it.
func combatantTable(c *Combatant) *lua.LTable {
	t := &lua.LTable{}
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("kind", lua.LString(c.Kind.String()))
	t.RawSetString("enemy_type", lua.LString(c.EnemyType))
	t.RawSetString("distance", lua.LString(strings.ToLower(c.Distance.String())))
	t.RawSetString("in_cover", lua.LBool(c.InCover))
	t.RawSetString("flanking", lua.LBool(c.Flanking))
	if c.Weapon != nil {
		t.RawSetString("weapon", lua.LString(c.Weapon.Type()))
		t.RawSetString("ammo", lua.LNumber(c.Weapon.Ammo()))
		t.RawSetString("max_ammo", lua.LNumber(c.Weapon.MaxAmmo()))
	}
	parts := &lua.LTable{}
	for _, p := range BodyPartTypes() {
		bp := c.Part(p)
		pt := &lua.LTable{}
		pt.RawSetString("hp", lua.LNumber(bp.HP))
		pt.RawSetString("max_hp", lua.LNumber(bp.MaxHP))
		pt.RawSetString("blacked_out", lua.LBool(bp.IsBlackedOut()))
		parts.RawSetString(strings.ToLower(p.String()), pt)
	}
	t.RawSetString("parts", parts)
	return t
}
