package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/dice"
)

func TestShootAt_FailsWithoutStateChange(t *testing.T) {
	r, _, events := newResolver(t, rolls())
	target := newScav()

	unarmed := combat.NewPlayer("Unarmed", combat.OperatorPools, nil)
	_, err := r.ShootAt(unarmed, target, combat.Head)
	assert.ErrorIs(t, err, combat.ErrNoWeapon)

	p := newPlayer()
	for p.Weapon.Ammo() > 0 {
		require.NoError(t, p.Weapon.Fire())
	}
	_, err = r.ShootAt(p, target, combat.Head)
	assert.ErrorIs(t, err, combat.ErrReloading)

	p.Weapon.Reloading = false
	_, err = r.ShootAt(p, target, combat.Head)
	assert.ErrorIs(t, err, combat.ErrEmpty)

	assert.Equal(t, 0, p.Weapon.Ammo())
	assert.Empty(t, *events)
	assert.Equal(t, target.Part(combat.Head).MaxHP, target.Part(combat.Head).HP)
}

func TestShootAt_HitConsumesRoundAndDamages(t *testing.T) {
	r, out, _ := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	p.Distance, e.Distance = combat.Close, combat.Close

	res, err := r.ShootAt(p, e, combat.Thorax)
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 50, res.Damage)
	assert.Equal(t, 14, p.Weapon.Ammo())
	assert.Equal(t, 100, e.Part(combat.Thorax).HP)
	assert.True(t, out.contains("hits Scavenger in the Thorax for 50 damage"))
}

func TestShootAt_MissStillConsumesRound(t *testing.T) {
	r, out, events := newResolver(t, rolls(0.95))
	p, e := newPlayer(), newScav()
	p.Distance = combat.Close

	res, err := r.ShootAt(p, e, combat.Thorax)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, 14, p.Weapon.Ammo())
	assert.Equal(t, 150, e.Part(combat.Thorax).HP)
	assert.Equal(t, []combat.EventType{combat.EventMiss}, eventTypes(*events))
	assert.True(t, out.contains("misses"))
}

func TestShootAt_RollEqualToChanceHits(t *testing.T) {
	r, _, _ := newResolver(t, rolls(0.25))
	p, e := newPlayer(), newScav()
	p.Distance = combat.Far

	res, err := r.ShootAt(p, e, combat.Thorax)
	require.NoError(t, err)
	assert.True(t, res.Hit)
}

func TestShootAt_LastRoundSetsReloading(t *testing.T) {
	r, _, _ := newResolver(t, rolls())
	p, e := newPlayer(), newScav()
	for p.Weapon.Ammo() > 1 {
		require.NoError(t, p.Weapon.Fire())
	}
	_, err := r.ShootAt(p, e, combat.Thorax)
	require.NoError(t, err)
	assert.True(t, p.Weapon.Reloading)
}

func TestShootAt_EnemyVsCoveredPlayer_PierceSucceeds(t *testing.T) {
	// hit roll, then cover-pierce roll under 0.30
	r, _, events := newResolver(t, rolls(0.0, 0.1))
	p, e := newPlayer(), newScav()
	p.InCover = true
	e.Distance = combat.Close

	res, err := r.ShootAt(e, p, combat.Thorax)
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.True(t, res.CoverBroken)
	assert.False(t, p.InCover)
	assert.Equal(t, 150, p.Part(combat.Thorax).HP)
	assert.Equal(t, []combat.EventType{combat.EventCoverPierced, combat.EventHit}, eventTypes(*events))
}

func TestShootAt_EnemyVsCoveredPlayer_Blocked(t *testing.T) {
	r, out, _ := newResolver(t, rolls(0.0, 0.5))
	p, e := newPlayer(), newScav()
	p.InCover = true
	e.Distance = combat.Close

	res, err := r.ShootAt(e, p, combat.Thorax)
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.False(t, res.Hit)
	assert.True(t, p.InCover)
	assert.Equal(t, 200, p.Part(combat.Thorax).HP)
	assert.Equal(t, 14, e.Weapon.Ammo())
	assert.True(t, out.contains("blocked by Alice's cover"))
}

func TestShootAt_EnemyVsCoveredPlayer_MissIsClean(t *testing.T) {
	src := rolls(0.99)
	r, _, events := newResolver(t, src)
	p, e := newPlayer(), newScav()
	p.InCover = true

	_, err := r.ShootAt(e, p, combat.Head)
	require.NoError(t, err)
	assert.True(t, p.InCover)
	assert.Equal(t, []combat.EventType{combat.EventMiss}, eventTypes(*events))
}

func TestShootAt_DivingForCoverNarrative(t *testing.T) {
	r, out, _ := newResolver(t, rolls(0.0, 0.0, 0.0))
	p, e := newPlayer(), newScav()
	p.TakeCover()
	e.Distance = combat.Close

	_, err := r.ShootAt(e, p, combat.Arm)
	require.NoError(t, err)
	assert.True(t, out.contains("hit while diving for cover"))
	assert.False(t, p.JustTookCover, "latch is read once")

	out.lines = nil
	p.TakeCover()
	p.JustTookCover = false
	_, err = r.ShootAt(e, p, combat.Arm)
	require.NoError(t, err)
	assert.False(t, out.contains("diving"))
}

func TestShootAt_FatalityOnKillingBlow(t *testing.T) {
	r, out, events := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	p.Distance = combat.Close

	res, err := r.ShootAt(p, e, combat.Head)
	require.NoError(t, err)
	assert.True(t, res.Killed)
	assert.True(t, e.IsDead())
	require.Len(t, *events, 1)
	assert.Equal(t, combat.EventKill, (*events)[0].Type)
	assert.True(t, out.contains("skull"))
}

func TestShootAt_LimbDestroyedIsNotKill(t *testing.T) {
	r, _, events := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	e.ApplyDamage(combat.Leg, 60)

	res, err := r.ShootAt(p, e, combat.Leg)
	require.NoError(t, err)
	assert.False(t, res.Killed)
	assert.Equal(t, combat.EventLimbDestroyed, (*events)[0].Type)
}

func TestShootAt_OverkillOnBlackedOutPart(t *testing.T) {
	r, out, _ := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	e.ApplyDamage(combat.Arm, 100)

	res, err := r.ShootAt(p, e, combat.Arm)
	require.NoError(t, err)
	assert.Equal(t, combat.DefaultRules().OverkillDamage, res.Damage)
	assert.True(t, res.Killed)
	assert.Equal(t, 0, e.Part(combat.Thorax).HP)
	assert.True(t, out.contains("finishes them"))
}

func TestShootAt_HealthyPartAfterBlackoutTakesWeaponDamage(t *testing.T) {
	r, _, events := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	e.ApplyDamage(combat.Arm, 100)

	res, err := r.ShootAt(p, e, combat.Leg)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Damage)
	assert.False(t, res.Killed)
	assert.Equal(t, 50, e.Part(combat.Leg).HP)
	assert.Equal(t, 150, e.Part(combat.Thorax).HP)
	assert.Equal(t, combat.EventHit, (*events)[0].Type)
}

func TestShootAt_PlayerInCoverForcesFlank(t *testing.T) {
	r, _, events := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	p.Distance = combat.Close
	p.InCover = true

	_, err := r.ShootAt(p, e, combat.Arm)
	require.NoError(t, err)
	assert.True(t, e.Flanking)
	assert.Equal(t, 1, e.FlankCountdown)
	assert.Contains(t, eventTypes(*events), combat.EventForcedFlank)
}

func TestShootAt_PlayerInCoverKillingShotForcesNothing(t *testing.T) {
	r, _, _ := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	p.Distance = combat.Close
	p.InCover = true

	_, err := r.ShootAt(p, e, combat.Head)
	require.NoError(t, err)
	assert.True(t, e.IsDead())
	assert.False(t, e.Flanking)
}

func TestShootAt_StrayShotStripsCover(t *testing.T) {
	r, _, events := newResolver(t, rolls(0.99, 0.1))
	p, e := newPlayer(), newScav()
	e.InCover = true

	res, err := r.ShootAt(p, e, combat.Thorax)
	require.NoError(t, err)
	assert.True(t, res.CoverBroken)
	assert.False(t, e.InCover)
	assert.Equal(t, []combat.EventType{combat.EventMiss, combat.EventStrayShot}, eventTypes(*events))
}

func TestShootAt_HitMayKnockTargetOutOfCover(t *testing.T) {
	r, _, _ := newResolver(t, rolls(0.0, 0.2))
	p, e := newPlayer(), newScav()
	p.Distance = combat.Close
	e.InCover = true

	res, err := r.ShootAt(p, e, combat.Arm)
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.True(t, res.CoverBroken)
	assert.False(t, e.InCover)
}

func TestReload_Narration(t *testing.T) {
	r, out, events := newResolver(t, rolls())
	p := newPlayer()
	r.Reload(p)
	assert.True(t, out.contains("already fully loaded"))

	require.NoError(t, p.Weapon.Fire())
	r.Reload(p)
	assert.Equal(t, p.Weapon.MaxAmmo(), p.Weapon.Ammo())
	assert.Equal(t, []combat.EventType{combat.EventAlreadyLoaded, combat.EventReload}, eventTypes(*events))

	r.Reload(combat.NewPlayer("Unarmed", combat.OperatorPools, nil))
	assert.Len(t, *events, 2)
}

func TestAttemptFlee_Preconditions(t *testing.T) {
	r, _, _ := newResolver(t, rolls(0.0, 0.0, 0.0))
	p := newPlayer()
	p.Distance = combat.Medium
	assert.Equal(t, combat.FleeWrongDistance, r.AttemptFlee(p))

	p.Distance = combat.Far
	p.ApplyDamage(combat.Leg, 1000)
	assert.Equal(t, combat.FleeLegsGone, r.AttemptFlee(p))

	e := newScav()
	e.Distance = combat.Far
	assert.Equal(t, combat.FleeNotAllowed, r.AttemptFlee(e))
}

func TestAttemptFlee_Rate(t *testing.T) {
	r, _, _ := newResolver(t, dice.NewSeededSource(20260101))
	p := newPlayer()
	p.Distance = combat.Far

	const trials = 10_000
	successes := 0
	for i := 0; i < trials; i++ {
		if r.AttemptFlee(p) == combat.FleeSucceeded {
			successes++
		}
	}
	rate := float64(successes) / trials
	assert.GreaterOrEqual(t, rate, 0.47)
	assert.LessOrEqual(t, rate, 0.53)
}

func TestDecideAction_DeadEnemyDoesNothing(t *testing.T) {
	r, _, events := newResolver(t, rolls(0.0))
	p, e := newPlayer(), newScav()
	e.ApplyDamage(combat.Head, 1000)
	r.DecideAction(e, p)
	assert.Empty(t, *events)
	assert.Equal(t, 15, e.Weapon.Ammo())
}

func TestDecideAction_ReloadsWhenEmpty(t *testing.T) {
	r, _, events := newResolver(t, rolls())
	p, e := newPlayer(), newScav()
	for e.Weapon.Ammo() > 0 {
		require.NoError(t, e.Weapon.Fire())
	}
	r.DecideAction(e, p)
	assert.Equal(t, []combat.EventType{combat.EventReload}, eventTypes(*events))
	assert.Equal(t, 15, e.Weapon.Ammo())
}

func TestDecideAction_FlankLifecycle(t *testing.T) {
	r, _, events := newResolver(t, rolls(0.1))
	p, e := newPlayer(), newScav()
	p.InCover = true

	r.DecideAction(e, p)
	assert.True(t, e.Flanking)
	assert.Equal(t, 2, e.FlankCountdown)
	assert.Equal(t, 15, e.Weapon.Ammo(), "starting a flank fires no shot")

	r.DecideAction(e, p)
	assert.True(t, e.Flanking)
	assert.True(t, p.InCover)

	r.DecideAction(e, p)
	assert.False(t, e.Flanking)
	assert.False(t, p.InCover)
	assert.Equal(t, 15, e.Weapon.Ammo(), "completing a flank fires no shot")
	assert.Equal(t, []combat.EventType{combat.EventFlankStart, combat.EventFlankAdvance, combat.EventFlankComplete}, eventTypes(*events))
}

func TestDecideAction_ForcedFlankCompletesNextTurn(t *testing.T) {
	r, _, _ := newResolver(t, rolls())
	p, e := newPlayer(), newScav()
	p.InCover = true
	e.StartFlank(1)
	r.DecideAction(e, p)
	assert.False(t, p.InCover)
	assert.False(t, e.Flanking)
}

func TestDecideAction_TargetSelection(t *testing.T) {
	cases := []struct {
		name  string
		rolls []float64
		want  combat.BodyPartType
	}{
		{"head", []float64{0.1}, combat.Head},
		{"leg", []float64{0.5, 0.1}, combat.Leg},
		{"arm", []float64{0.5, 0.5, 0.1}, combat.Arm},
		{"thorax", []float64{0.5, 0.5, 0.5}, combat.Thorax},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _, events := newResolver(t, rolls(append(tc.rolls, 0.99)...))
			p, e := newPlayer(), newScav()
			r.DecideAction(e, p)
			require.Len(t, *events, 1)
			assert.Equal(t, combat.EventMiss, (*events)[0].Type)
			assert.Equal(t, tc.want, (*events)[0].Part)
			assert.Equal(t, 14, e.Weapon.Ammo())
		})
	}
}

func TestDecideAction_SkipsBlackedOutHead(t *testing.T) {
	r, _, events := newResolver(t, rolls(0.1, 0.99))
	p, e := newPlayer(), newScav()
	p.Part(combat.Head).HP = 0
	r.DecideAction(e, p)
	require.NotEmpty(t, *events)
	assert.Equal(t, combat.Leg, (*events)[0].Part)
}

type fakeCaller struct {
	results map[string]lua.LValue
	calls   []string
}

func (f *fakeCaller) CallHook(key, hook string, _ ...lua.LValue) (lua.LValue, error) {
	f.calls = append(f.calls, key+":"+hook)
	if v, ok := f.results[hook]; ok {
		return v, nil
	}
	return lua.LNil, nil
}

func TestDecideAction_ScriptedAdvisor(t *testing.T) {
	caller := &fakeCaller{results: map[string]lua.LValue{"choose_target": lua.LString("LEG")}}
	r, _, events := newResolver(t, rolls(0.99))
	r.SetAdvisor(combat.NewScriptedAdvisor(caller))
	p, e := newPlayer(), newScav()

	r.DecideAction(e, p)
	require.Len(t, *events, 1)
	assert.Equal(t, combat.Leg, (*events)[0].Part)
	assert.Equal(t, []string{"scav:choose_target"}, caller.calls)
}

func TestDecideAction_ScriptedFlankChance(t *testing.T) {
	caller := &fakeCaller{results: map[string]lua.LValue{"flank_chance": lua.LNumber(1)}}
	r, _, _ := newResolver(t, rolls(0.9))
	r.SetAdvisor(combat.NewScriptedAdvisor(caller))
	p, e := newPlayer(), newScav()
	p.InCover = true

	r.DecideAction(e, p)
	assert.True(t, e.Flanking)
}

func TestScriptedAdvisor_FallsBack(t *testing.T) {
	a := combat.NewScriptedAdvisor(&fakeCaller{results: map[string]lua.LValue{"choose_target": lua.LString("elbow")}})
	_, ok := a.ChooseTarget(newScav(), newPlayer())
	assert.False(t, ok)
	assert.Equal(t, 0.35, a.FlankChance(newScav(), newPlayer(), 0.35))
}
