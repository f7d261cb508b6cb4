package handlers

import (
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/firefight/content"
	"github.com/cory-johannsen/firefight/internal/config"
	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/dice"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
	"github.com/cory-johannsen/firefight/internal/game/npc"
	"github.com/cory-johannsen/firefight/internal/scripting"
)

// Content bundles the definitions a skirmish draws from.
type Content struct {
	Registry *inventory.Registry
	Roster   *npc.Roster
	// Scripts is nil when no tactics scripts were found.
	Scripts *scripting.Manager
}

// Close releases the script VMs.
func (c *Content) Close() {
	if c.Scripts != nil {
		c.Scripts.Close()
	}
}

// Advisor returns a scripted target advisor, or nil when no scripts are loaded.
func (c *Content) Advisor() combat.TargetAdvisor {
	if c.Scripts == nil {
		return nil
	}
	return combat.NewScriptedAdvisor(c.Scripts)
}

// contentDir resolves a configured directory to a filesystem and a path
// within it. An empty directory selects the embedded default.
func contentDir(configured, embedded string) (fs.FS, string) {
	if configured == "" {
		return content.FS, embedded
	}
	return os.DirFS(configured), "."
}

// LoadContent loads weapons, items, enemy templates and tactics scripts.
//
// Precondition: src and logger must be non-nil.
// Postcondition: on success every template weapon and loot item is
// registered; on error nothing needs closing.
func LoadContent(cfg config.ContentConfig, src dice.Source, logger *zap.Logger) (*Content, error) {
	reg := inventory.NewRegistry()

	fsys, dir := contentDir(cfg.WeaponsDir, content.WeaponsDir)
	weapons, err := inventory.LoadWeapons(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading weapons: %w", err)
	}
	for _, w := range weapons {
		if err := reg.RegisterWeapon(w); err != nil {
			return nil, fmt.Errorf("loading weapons: %w", err)
		}
	}

	fsys, dir = contentDir(cfg.ItemsDir, content.ItemsDir)
	items, err := inventory.LoadItems(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	for _, it := range items {
		if err := reg.RegisterItem(it); err != nil {
			return nil, fmt.Errorf("loading items: %w", err)
		}
	}

	fsys, dir = contentDir(cfg.EnemiesDir, content.EnemiesDir)
	templates, err := npc.LoadTemplates(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("loading enemies: no templates in %q", dir)
	}
	if err := crossCheck(reg, templates); err != nil {
		return nil, err
	}

	scripts, err := loadScripts(cfg, src, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("content loaded",
		zap.Int("weapons", len(weapons)),
		zap.Int("items", len(items)),
		zap.Int("enemies", len(templates)),
		zap.Bool("scripts", scripts != nil),
	)
	return &Content{Registry: reg, Roster: npc.NewRoster(templates), Scripts: scripts}, nil
}

// crossCheck verifies every template references registered weapons and items.
func crossCheck(reg *inventory.Registry, templates []*npc.Template) error {
	for _, t := range templates {
		for _, w := range t.Weapons {
			if reg.Weapon(w.Weapon) == nil {
				return fmt.Errorf("enemy %q: weapon %q is not defined", t.ID, w.Weapon)
			}
		}
		if t.Loot == nil {
			continue
		}
		for _, drop := range t.Loot.Items {
			if _, ok := reg.Item(drop.ItemID); !ok {
				return fmt.Errorf("enemy %q: loot item %q is not defined", t.ID, drop.ItemID)
			}
		}
	}
	return nil
}

// loadScripts loads the global directory with LoadGlobal and every other
// subdirectory under the key of the same name. A missing scripts directory
// yields a nil manager.
func loadScripts(cfg config.ContentConfig, src dice.Source, logger *zap.Logger) (*scripting.Manager, error) {
	fsys, dir := contentDir(cfg.ScriptsDir, content.ScriptsDir)
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if cfg.ScriptsDir == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("loading scripts: %w", err)
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading scripts: %w", err)
	}

	mgr := scripting.NewManager(src, logger, cfg.ScriptInstructionLimit)
	loaded := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		key := e.Name()
		if key == content.GlobalScriptsDir {
			err = mgr.LoadGlobal(sub, key)
		} else {
			err = mgr.Load(key, sub, key)
		}
		if err != nil {
			mgr.Close()
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
		loaded++
	}
	if loaded == 0 {
		mgr.Close()
		return nil, nil
	}
	return mgr, nil
}

// RulesFromConfig converts the combat configuration section into Rules.
func RulesFromConfig(c config.CombatConfig) combat.Rules {
	return combat.Rules{
		CoverPierceChance:     c.CoverPierceChance,
		CoverBreakOnHitChance: c.CoverBreakOnHitChance,
		StrayShotChance:       c.StrayShotChance,
		FlankChance:           c.FlankChance,
		FlankTurns:            c.FlankTurns,
		FleeChance:            c.FleeChance,
		PlayerCoverAccuracy:   c.PlayerCoverAccuracy,
		OverkillDamage:        c.OverkillDamage,
		HeadShotChance:        c.HeadShotChance,
		LegShotChance:         c.LegShotChance,
		ArmShotChance:         c.ArmShotChance,
	}
}
