package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/firefight/internal/frontend/telnet"
	"github.com/cory-johannsen/firefight/internal/game/combat"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
)

// eventStyle returns the ANSI style for an event type, or "" for plain text.
func eventStyle(t combat.EventType) string {
	switch t {
	case combat.EventKill, combat.EventLimbDestroyed:
		return telnet.Bold + telnet.BrightRed
	case combat.EventHit, combat.EventDiveHit:
		return telnet.Red
	case combat.EventMiss:
		return telnet.Dim
	case combat.EventBlockedByCover, combat.EventTakeCover:
		return telnet.Cyan
	case combat.EventCoverPierced, combat.EventCoverBroken, combat.EventStrayShot:
		return telnet.Yellow
	case combat.EventFlankStart, combat.EventFlankAdvance, combat.EventForcedFlank:
		return telnet.BrightYellow
	case combat.EventFlankComplete:
		return telnet.Bold + telnet.BrightYellow
	case combat.EventFlee:
		return telnet.BrightGreen
	case combat.EventEngagementStart, combat.EventEngagementEnd:
		return telnet.Bold + telnet.BrightWhite
	}
	return ""
}

// RenderEvent formats ev's narrative as coloured Telnet text.
func RenderEvent(ev combat.Event) string {
	text := ev.Narrative
	if ev.Type == combat.EventInfo && strings.HasPrefix(text, "===") {
		return telnet.Colorize(telnet.BrightCyan, text)
	}
	return telnet.Colorize(eventStyle(ev.Type), text)
}

// RenderLoot lists item stacks by display name, or a dim "nothing" line.
func RenderLoot(reg *inventory.Registry, items []inventory.ItemInstance) string {
	if len(items) == 0 {
		return telnet.Colorize(telnet.Dim, "You find nothing worth taking.")
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		name := reg.ItemName(it.ItemDefID)
		if it.Quantity > 1 {
			name = fmt.Sprintf("%s (x%d)", name, it.Quantity)
		}
		parts = append(parts, name)
	}
	return telnet.Colorf(telnet.Green, "You find: %s", strings.Join(parts, ", "))
}

// RenderStash lists the items a player has collected this session.
func RenderStash(reg *inventory.Registry, stash map[string]int) string {
	if len(stash) == 0 {
		return telnet.Colorize(telnet.Dim, "  Your pack is empty.")
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Pack ==="))
	for _, id := range sortedKeys(stash) {
		b.WriteString(fmt.Sprintf("\n  %s x%d", reg.ItemName(id), stash[id]))
	}
	return b.String()
}

// telnetOutput renders engine output onto a Telnet connection in colour.
type telnetOutput struct {
	conn *telnet.Conn
}

func (o telnetOutput) WriteLine(text string) error { return o.conn.WriteLine(text) }

func (o telnetOutput) WriteEvent(ev combat.Event) error { return o.conn.WriteLine(RenderEvent(ev)) }

func (o telnetOutput) WritePrompt(prompt string) error {
	return o.conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, prompt))
}
