package combat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Outcome is how an engagement ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWon
	OutcomeLost
	OutcomeFled
)

// String returns "none", "won", "lost" or "fled".
func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	case OutcomeFled:
		return "fled"
	default:
		return "none"
	}
}

// Engagement states.
const (
	StateStart      = "start"
	StatePlayerTurn = "player_turn"
	StateEnemyTurn  = "enemy_turn"
	StateWon        = "won"
	StateLost       = "lost"
	StateFled       = "fled"
)

// Engagement transitions.
const (
	evBegin       = "begin"
	evPlayerDone  = "player_done"
	evEnemyDone   = "enemy_done"
	evEnemiesDown = "enemies_down"
	evPlayerDown  = "player_down"
	evFlee        = "flee"
)

const menuText = " 1) Move Closer   2) Move Further   3) Take Cover   leave cover\n" +
	" 4) Shoot [#] <head|thorax|arm|leg>   5) Reload   6) Flee [location]   scope   status"

// ErrNoEnemies is returned by Engage when the enemy list is empty.
var ErrNoEnemies = errors.New("combat: engagement requires at least one enemy")

// Manager runs engagements between one player and an enemy squad. It reads
// player commands from an Input and narrates through the Resolver's Output.
// A Manager runs one engagement at a time.
type Manager struct {
	resolver *Resolver
	in       Input
	out      Output
	logger   *zap.Logger
	outcome  Outcome
}

// NewManager creates a Manager.
//
// Precondition: resolver, in, out and logger must be non-nil.
func NewManager(resolver *Resolver, in Input, out Output, logger *zap.Logger) *Manager {
	if resolver == nil || in == nil || out == nil || logger == nil {
		panic("combat.NewManager: resolver, in, out and logger must not be nil")
	}
	return &Manager{resolver: resolver, in: in, out: out, logger: logger}
}

// Outcome returns how the most recent engagement ended.
func (m *Manager) Outcome() Outcome { return m.outcome }

// engagement is the transient state of one Engage call.
type engagement struct {
	player   *Combatant
	enemies  []*Combatant
	distance Distance
	machine  *fsm.FSM
}

func (e *engagement) setDistance(d Distance) {
	e.distance = d
	e.player.Distance = d
	for _, en := range e.enemies {
		en.Distance = d
	}
}

func (e *engagement) allEnemiesDead() bool {
	for _, en := range e.enemies {
		if !en.IsDead() {
			return false
		}
	}
	return true
}

func (e *engagement) firstLiving() *Combatant {
	for _, en := range e.enemies {
		if !en.IsDead() {
			return en
		}
	}
	return nil
}

func (m *Manager) newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateStart,
		fsm.Events{
			{Name: evBegin, Src: []string{StateStart}, Dst: StatePlayerTurn},
			{Name: evPlayerDone, Src: []string{StatePlayerTurn}, Dst: StateEnemyTurn},
			{Name: evEnemyDone, Src: []string{StateEnemyTurn}, Dst: StatePlayerTurn},
			{Name: evEnemiesDown, Src: []string{StatePlayerTurn, StateEnemyTurn}, Dst: StateWon},
			{Name: evPlayerDown, Src: []string{StatePlayerTurn, StateEnemyTurn}, Dst: StateLost},
			{Name: evFlee, Src: []string{StatePlayerTurn}, Dst: StateFled},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				m.logger.Debug("engagement transition",
					zap.String("event", e.Event),
					zap.String("from", e.Src),
					zap.String("to", e.Dst),
				)
			},
		},
	)
}

// Engage runs one engagement until every enemy is dead, the player is dead,
// or the player flees. player is mutated in place so the caller observes
// every wound; enemies are borrowed for the duration of the call.
//
// Precondition: player is a KindPlayer combatant; enemies is non-empty.
// Postcondition: returns true iff the player is alive at exit. A non-nil
// error means input failed or ctx was cancelled before a terminal state.
func (m *Manager) Engage(ctx context.Context, player *Combatant, enemies []*Combatant) (bool, error) {
	if len(enemies) == 0 {
		return !player.IsDead(), ErrNoEnemies
	}
	m.outcome = OutcomeNone
	e := &engagement{player: player, enemies: enemies, machine: m.newMachine()}
	e.setDistance(Far)
	player.InCover = false
	player.JustTookCover = false

	m.logger.Info("engagement started",
		zap.String("player", player.Name),
		zap.Int("enemies", len(enemies)),
	)
	m.resolver.emit(Event{Type: EventEngagementStart, Actor: player, Narrative: "--- Combat Start! ---"})
	if err := m.transition(ctx, e, evBegin); err != nil {
		return !player.IsDead(), err
	}

	for {
		switch e.machine.Current() {
		case StatePlayerTurn:
			if err := ctx.Err(); err != nil {
				return !player.IsDead(), err
			}
			if player.IsDead() {
				if err := m.transition(ctx, e, evPlayerDown); err != nil {
					return false, err
				}
				continue
			}
			fled, err := m.playerTurn(ctx, e)
			if err != nil {
				return !player.IsDead(), err
			}
			next := evPlayerDone
			switch {
			case fled:
				next = evFlee
			case e.allEnemiesDead():
				next = evEnemiesDown
			}
			if err := m.transition(ctx, e, next); err != nil {
				return !player.IsDead(), err
			}

		case StateEnemyTurn:
			m.enemyTurn(e)
			next := evEnemyDone
			switch {
			case player.IsDead():
				next = evPlayerDown
			case e.allEnemiesDead():
				next = evEnemiesDown
			}
			if err := m.transition(ctx, e, next); err != nil {
				return !player.IsDead(), err
			}

		case StateWon:
			return m.finish(e, OutcomeWon, "The enemy lies still."), nil
		case StateLost:
			return m.finish(e, OutcomeLost, "You have been killed in combat."), nil
		case StateFled:
			return m.finish(e, OutcomeFled, ""), nil
		default:
			return !player.IsDead(), fmt.Errorf("combat: unexpected engagement state %q", e.machine.Current())
		}
	}
}

func (m *Manager) transition(ctx context.Context, e *engagement, event string) error {
	if err := e.machine.Event(ctx, event); err != nil {
		return fmt.Errorf("combat: engagement transition %q: %w", event, err)
	}
	return nil
}

func (m *Manager) finish(e *engagement, o Outcome, narrative string) bool {
	m.outcome = o
	m.resolver.emit(Event{Type: EventEngagementEnd, Actor: e.player, Outcome: o, Narrative: narrative})
	m.logger.Info("engagement ended",
		zap.String("player", e.player.Name),
		zap.Stringer("outcome", o),
	)
	return !e.player.IsDead()
}

// enemyTurn lets every living enemy act once, in order, stopping as soon as
// the player dies.
func (m *Manager) enemyTurn(e *engagement) {
	for _, en := range e.enemies {
		if en.IsDead() {
			continue
		}
		m.resolver.DecideAction(en, e.player)
		if e.player.IsDead() {
			return
		}
	}
}

// playerTurn prompts until the player takes an action that spends the turn.
func (m *Manager) playerTurn(ctx context.Context, e *engagement) (fled bool, err error) {
	e.player.Tick()
	m.showStatus(e)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		e.player.JustTookCover = false
		m.prompt()
		line, err := m.in.ReadLine()
		if err != nil {
			return false, fmt.Errorf("combat: reading command: %w", err)
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			if !errors.Is(err, ErrEmptyCommand) {
				m.resolver.say("%s", commandErrorText(err))
			}
			continue
		}
		spent, fled := m.apply(e, cmd)
		if spent {
			return fled, nil
		}
	}
}

func commandErrorText(err error) string {
	switch {
	case errors.Is(err, ErrShootUsage):
		return "Usage: shoot [target#] <head|thorax|arm|leg>"
	case errors.Is(err, ErrBadTarget):
		return "Target must be an enemy number from the list."
	default:
		return "Unknown command. Try again, or type help."
	}
}

// apply performs cmd. spent reports whether the player's turn is over.
func (m *Manager) apply(e *engagement, cmd Command) (spent, fled bool) {
	r := m.resolver
	p := e.player
	switch cmd.Type {
	case CmdMoveCloser, CmdMoveFurther:
		next, ok := e.distance.Closer()
		verb := "closer"
		if cmd.Type == CmdMoveFurther {
			next, ok = e.distance.Further()
			verb = "further away"
		}
		if !ok {
			r.say("You can't move any %s. Distance: %s.", verb, e.distance)
			return false, false
		}
		e.setDistance(next)
		if p.BreakCover() {
			r.emit(Event{Type: EventLeaveCover, Actor: p, Narrative: "You leave your cover as you move."})
		}
		r.emit(Event{Type: EventMove, Actor: p, Narrative: fmt.Sprintf("You move %s. Distance: %s.", verb, next)})
		return true, false

	case CmdTakeCover:
		if !p.TakeCover() {
			r.emit(Event{Type: EventInfo, Actor: p, Narrative: "You are already in cover."})
			return true, false
		}
		r.emit(Event{Type: EventTakeCover, Actor: p, Narrative: "You drop behind cover."})
		return true, false

	case CmdLeaveCover:
		if !p.BreakCover() {
			r.emit(Event{Type: EventInfo, Actor: p, Narrative: "You are not in cover."})
			return true, false
		}
		r.emit(Event{Type: EventLeaveCover, Actor: p, Narrative: "You break from cover."})
		return true, false

	case CmdShoot:
		return m.shoot(e, cmd), false

	case CmdReload:
		if p.Weapon == nil {
			r.say("You have nothing to reload.")
			return false, false
		}
		r.Reload(p)
		return true, false

	case CmdFlee:
		return true, m.flee(e, cmd.Location)

	case CmdScope:
		if p.Weapon == nil {
			r.say("You have no weapon.")
			return false, false
		}
		on, err := p.Weapon.ToggleScope()
		switch {
		case err != nil:
			r.say("Your %s has no scope.", p.Weapon.Name())
		case on:
			r.say("You settle your eye behind the scope.")
		default:
			r.say("You lower the scope.")
		}
		return false, false

	case CmdStatus:
		m.showStatus(e)
		return false, false

	case CmdHelp:
		r.say("%s", menuText)
		return false, false
	}
	return false, false
}

func (m *Manager) shoot(e *engagement, cmd Command) bool {
	r := m.resolver
	var target *Combatant
	if cmd.Target == 0 {
		target = e.firstLiving()
		if target == nil {
			r.say("No valid target to shoot.")
			return false
		}
	} else {
		if cmd.Target > len(e.enemies) || e.enemies[cmd.Target-1].IsDead() {
			r.say("There is no living enemy number %d.", cmd.Target)
			return false
		}
		target = e.enemies[cmd.Target-1]
	}
	if _, err := r.ShootAt(e.player, target, cmd.Part); err != nil {
		switch {
		case errors.Is(err, ErrNoWeapon):
			r.say("You have no weapon to shoot with.")
		default:
			r.say("Unable to shoot: %s. Reload first.", err)
		}
		return false
	}
	return true
}

func (m *Manager) flee(e *engagement, location string) bool {
	r := m.resolver
	p := e.player
	res := r.AttemptFlee(p)
	m.logger.Debug("flee attempt", zap.Stringer("result", res))
	switch res {
	case FleeSucceeded:
		text := "You break contact and escape."
		if location != "" {
			text = fmt.Sprintf("You flee back to %s.", location)
		}
		r.emit(Event{Type: EventFlee, Actor: p, Narrative: text})
		return true
	case FleeWrongDistance:
		r.emit(Event{Type: EventFleeFailed, Actor: p, Narrative: "You're too close to break contact. Get to Far range first."})
	case FleeLegsGone:
		r.emit(Event{Type: EventFleeFailed, Actor: p, Narrative: "Your leg gives out. You can't run."})
	default:
		r.emit(Event{Type: EventFleeFailed, Actor: p, Narrative: "You try to slip away, but they keep you pinned!"})
	}
	return false
}

func (m *Manager) prompt() {
	const prompt = "Command> "
	if p, ok := m.out.(Prompter); ok {
		_ = p.WritePrompt(prompt)
		return
	}
	_ = m.out.WriteLine(prompt)
}

func (m *Manager) showStatus(e *engagement) {
	for _, line := range StatusLines(e.player, e.enemies) {
		m.resolver.say("%s", line)
	}
}

// StatusLines renders the player's limbs, weapon and range followed by the
// numbered enemy list.
func StatusLines(player *Combatant, enemies []*Combatant) []string {
	lines := []string{
		fmt.Sprintf("=== %s Status ===", player.Name),
		partsLine(player, " | "),
	}
	weapon := "None [N/A]"
	if player.Weapon != nil {
		weapon = fmt.Sprintf("%s [%d/%d]", player.Weapon.Name(), player.Weapon.Ammo(), player.Weapon.MaxAmmo())
		if player.Weapon.Scoped {
			weapon += " (scoped)"
		}
	}
	cover := "exposed"
	if player.InCover {
		cover = "in cover"
	}
	lines = append(lines,
		fmt.Sprintf("Weapon: %s | Distance: %s | %s", weapon, player.Distance, cover),
		"=== Enemies ===",
	)
	for i, en := range enemies {
		if en.IsDead() {
			lines = append(lines, fmt.Sprintf("%d: %s [DEAD]", i+1, en.Name))
			continue
		}
		line := fmt.Sprintf("%d: %s | %s", i+1, en.Name, partsLine(en, " | "))
		if en.Flanking {
			line += " | flanking"
		}
		lines = append(lines, line)
	}
	return lines
}

func partsLine(c *Combatant, sep string) string {
	fields := make([]string, 0, numBodyParts)
	for _, p := range BodyPartTypes() {
		bp := c.Part(p)
		fields = append(fields, fmt.Sprintf("%s: %d/%d", p, bp.HP, bp.MaxHP))
	}
	return strings.Join(fields, sep)
}
