// Package handlers runs skirmish sessions: a player fights a string of
// randomly generated engagements, collecting loot from each win until they
// die or decline another fight.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/firefight/internal/config"
	"github.com/cory-johannsen/firefight/internal/frontend/telnet"
	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/dice"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
	"github.com/cory-johannsen/firefight/internal/game/npc"
)

const (
	// DefaultCallsign names the player when none is given.
	DefaultCallsign = "Operator"

	callsignPrompt = "Callsign> "
	againPrompt    = "Another engagement? (y/n) "
)

// Skirmish generates engagements for any number of concurrent sessions.
// Content, rules and the floor are shared; each Run owns its player.
type Skirmish struct {
	content   *Content
	rules     combat.Rules
	cfg       config.SkirmishConfig
	src       dice.Source
	floor     *inventory.FloorManager
	logger    *zap.Logger
	observers []combat.Observer
}

// NewSkirmish creates a Skirmish.
//
// Precondition: content, src, floor and logger must be non-nil; rules and
// cfg must be valid.
func NewSkirmish(content *Content, rules combat.Rules, cfg config.SkirmishConfig, src dice.Source, floor *inventory.FloorManager, logger *zap.Logger, observers ...combat.Observer) *Skirmish {
	if content == nil || src == nil || floor == nil || logger == nil {
		panic("handlers.NewSkirmish: content, src, floor and logger must be non-nil")
	}
	return &Skirmish{
		content:   content,
		rules:     rules,
		cfg:       cfg,
		src:       src,
		floor:     floor,
		logger:    logger,
		observers: observers,
	}
}

// session holds the state of one Run.
type session struct {
	in      combat.Input
	out     combat.Output
	arenaID string
	player  *combat.Combatant
	stash   map[string]int
	log     *zap.Logger
}

func (s *session) say(format string, args ...any) {
	_ = s.out.WriteLine(fmt.Sprintf(format, args...))
}

func (s *session) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p, ok := s.out.(combat.Prompter); ok {
		_ = p.WritePrompt(prompt)
	} else {
		_ = s.out.WriteLine(prompt)
	}
	line, err := s.in.ReadLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Run plays engagements until the player dies, declines another fight, or
// input ends. End of input is a clean exit.
//
// Postcondition: returns nil on a clean exit; otherwise the input error or
// ctx.Err().
func (sk *Skirmish) Run(ctx context.Context, in combat.Input, out combat.Output) error {
	err := sk.run(ctx, in, out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (sk *Skirmish) run(ctx context.Context, in combat.Input, out combat.Output) error {
	s := &session{in: in, out: out, arenaID: "arena-" + uuid.NewString(), stash: make(map[string]int)}
	s.log = sk.logger.With(zap.String("arena", s.arenaID))
	defer sk.clearArena(s)

	s.say("%s", telnet.Colorize(telnet.Bold+telnet.BrightCyan, "=== FIREFIGHT ==="))
	s.say("Hostiles are moving through the sector. Type help during combat for commands.")

	name := sk.cfg.PlayerName
	if name == "" {
		line, err := s.ask(ctx, callsignPrompt)
		if err != nil {
			return err
		}
		name = line
	}
	if name == "" {
		name = DefaultCallsign
	}

	player, err := sk.newPlayer(name)
	if err != nil {
		return err
	}
	s.player = player
	s.log.Info("skirmish started", zap.String("player", name))

	for round := 1; ; round++ {
		outcome, err := sk.engagement(ctx, s, round)
		if err != nil {
			return err
		}
		switch outcome {
		case combat.OutcomeLost:
			s.say("%s", telnet.Colorize(telnet.Bold+telnet.BrightRed, "*** GAME OVER ***"))
			s.say("%s", RenderStash(sk.content.Registry, s.stash))
			s.log.Info("skirmish ended", zap.String("reason", "killed"), zap.Int("engagements", round))
			return nil
		case combat.OutcomeFled:
			s.say("You break contact and slip away.")
		}

		s.say("%s", RenderStash(sk.content.Registry, s.stash))
		answer, err := s.ask(ctx, againPrompt)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			s.say("You exfil with what you carry. Stay safe, %s.", s.player.Name)
			s.log.Info("skirmish ended", zap.String("reason", "exfil"), zap.Int("engagements", round))
			return nil
		}
	}
}

func (sk *Skirmish) newPlayer(name string) (*combat.Combatant, error) {
	weapon, err := sk.content.Registry.NewWeapon(inventory.WeaponType(sk.cfg.PlayerWeapon))
	if err != nil {
		return nil, fmt.Errorf("equipping player: %w", err)
	}
	hp := sk.cfg.PlayerHP
	pools := combat.HPPools{Head: hp.Head, Thorax: hp.Thorax, Arm: hp.Arm, Leg: hp.Leg}
	if err := pools.Validate(); err != nil {
		return nil, fmt.Errorf("player pools: %w", err)
	}
	return combat.NewPlayer(name, pools, weapon), nil
}

// engagement spawns a group, fights it, and collects loot on a win.
func (sk *Skirmish) engagement(ctx context.Context, s *session, round int) (combat.Outcome, error) {
	enemies, err := sk.content.Roster.SpawnGroup(sk.cfg.MinEnemies, sk.cfg.MaxEnemies, sk.content.Registry, sk.src)
	if err != nil {
		return combat.OutcomeNone, fmt.Errorf("spawning engagement %d: %w", round, err)
	}
	names := make([]string, len(enemies))
	for i, e := range enemies {
		names[i] = fmt.Sprintf("%s (%s)", e.Name, e.Weapon.Name())
	}
	s.say("%s", telnet.Colorf(telnet.Bold+telnet.BrightYellow, "Contact! %d hostile(s): %s", len(enemies), strings.Join(names, ", ")))

	resolver := combat.NewResolver(sk.src, sk.rules, s.out, s.log)
	resolver.SetAdvisor(sk.content.Advisor())
	for _, o := range sk.observers {
		resolver.AddObserver(o)
	}
	mgr := combat.NewManager(resolver, s.in, s.out, s.log)
	if _, err := mgr.Engage(ctx, s.player, enemies); err != nil {
		return combat.OutcomeNone, err
	}

	outcome := mgr.Outcome()
	if outcome == combat.OutcomeWon {
		sk.collectLoot(s, enemies)
	}
	return outcome, nil
}

// collectLoot rolls each dead enemy's loot table onto the arena floor, lists
// what is lying there, then moves each stack into the player's pack.
func (sk *Skirmish) collectLoot(s *session, enemies []*combat.Combatant) {
	for _, e := range enemies {
		if !e.IsDead() {
			continue
		}
		tmpl := sk.content.Roster.Template(e.EnemyType)
		if tmpl == nil || tmpl.Loot == nil {
			continue
		}
		for _, inst := range npc.GenerateLoot(*tmpl.Loot, sk.src) {
			sk.floor.Drop(s.arenaID, inst)
		}
	}

	onFloor := sk.floor.ItemsInRoom(s.arenaID)
	s.say("%s", RenderLoot(sk.content.Registry, onFloor))
	for _, inst := range onFloor {
		if taken, ok := sk.floor.Pickup(s.arenaID, inst.InstanceID); ok {
			s.stash[taken.ItemDefID] += taken.Quantity
		}
	}
	s.log.Debug("loot collected", zap.Int("stacks", len(onFloor)))
}

// clearArena removes anything left on the session's floor.
func (sk *Skirmish) clearArena(s *session) {
	if left := sk.floor.PickupAll(s.arenaID); len(left) > 0 {
		s.log.Debug("arena cleared", zap.Int("stacks", len(left)))
	}
}

// HandleSession runs a skirmish over a Telnet connection with coloured output.
// A closed connection or end of input is a clean exit.
func (sk *Skirmish) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	out := telnetOutput{conn: conn}
	err := sk.Run(ctx, conn, out)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

var _ telnet.SessionHandler = (*Skirmish)(nil)
