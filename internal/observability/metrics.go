package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cory-johannsen/firefight/internal/game/combat"
)

// CombatMetrics counts combat events. It implements combat.Observer so a
// resolver can feed it directly.
type CombatMetrics struct {
	shots       *prometheus.CounterVec
	kills       *prometheus.CounterVec
	flanks      *prometheus.CounterVec
	engagements *prometheus.CounterVec
}

// NewCombatMetrics creates the counters and registers them with reg.
//
// Precondition: reg must not be nil and must not already hold these metrics.
func NewCombatMetrics(reg prometheus.Registerer) *CombatMetrics {
	m := &CombatMetrics{
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firefight",
			Name:      "shots_total",
			Help:      "Rounds fired, by shooter kind and result.",
		}, []string{"shooter", "result"}),
		kills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firefight",
			Name:      "kills_total",
			Help:      "Combatants killed, by victim type.",
		}, []string{"victim"}),
		flanks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firefight",
			Name:      "flanks_total",
			Help:      "Enemy flanking maneuvers, by phase.",
		}, []string{"phase"}),
		engagements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firefight",
			Name:      "engagements_total",
			Help:      "Finished engagements, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.shots, m.kills, m.flanks, m.engagements)
	return m
}

// Observe records ev.
func (m *CombatMetrics) Observe(ev combat.Event) {
	switch ev.Type {
	case combat.EventHit, combat.EventLimbDestroyed:
		m.shot(ev.Actor, "hit")
	case combat.EventKill:
		m.shot(ev.Actor, "hit")
		m.kills.WithLabelValues(victimLabel(ev.Target)).Inc()
	case combat.EventMiss:
		m.shot(ev.Actor, "miss")
	case combat.EventBlockedByCover:
		m.shot(ev.Actor, "blocked")
	case combat.EventFlankStart:
		m.flanks.WithLabelValues("started").Inc()
	case combat.EventForcedFlank:
		m.flanks.WithLabelValues("forced").Inc()
	case combat.EventFlankComplete:
		m.flanks.WithLabelValues("completed").Inc()
	case combat.EventEngagementEnd:
		m.engagements.WithLabelValues(ev.Outcome.String()).Inc()
	}
}

func (m *CombatMetrics) shot(actor *combat.Combatant, result string) {
	shooter := "unknown"
	if actor != nil {
		shooter = actor.Kind.String()
	}
	m.shots.WithLabelValues(shooter, result).Inc()
}

func victimLabel(c *combat.Combatant) string {
	switch {
	case c == nil:
		return "unknown"
	case c.IsPlayer():
		return "player"
	default:
		return string(c.EnemyType)
	}
}
