package combat

// EventType classifies a narrated combat event.
type EventType int

const (
	EventInfo EventType = iota
	EventHit
	EventMiss
	EventKill
	EventLimbDestroyed
	EventBlockedByCover
	EventCoverPierced
	EventCoverBroken
	EventStrayShot
	EventDiveHit
	EventForcedFlank
	EventFlankStart
	EventFlankAdvance
	EventFlankComplete
	EventReload
	EventAlreadyLoaded
	EventMove
	EventTakeCover
	EventLeaveCover
	EventFlee
	EventFleeFailed
	EventEngagementStart
	EventEngagementEnd
)

var eventNames = map[EventType]string{
	EventInfo:            "info",
	EventHit:             "hit",
	EventMiss:            "miss",
	EventKill:            "kill",
	EventLimbDestroyed:   "limb_destroyed",
	EventBlockedByCover:  "blocked_by_cover",
	EventCoverPierced:    "cover_pierced",
	EventCoverBroken:     "cover_broken",
	EventStrayShot:       "stray_shot",
	EventDiveHit:         "dive_hit",
	EventForcedFlank:     "forced_flank",
	EventFlankStart:      "flank_start",
	EventFlankAdvance:    "flank_advance",
	EventFlankComplete:   "flank_complete",
	EventReload:          "reload",
	EventAlreadyLoaded:   "already_loaded",
	EventMove:            "move",
	EventTakeCover:       "take_cover",
	EventLeaveCover:      "leave_cover",
	EventFlee:            "flee",
	EventFleeFailed:      "flee_failed",
	EventEngagementStart: "engagement_start",
	EventEngagementEnd:   "engagement_end",
}

// String returns the snake_case name of the event type.
func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return "unknown"
}

// Event records one narrated happening. Actor and Target may be nil for
// engagement-level events.
type Event struct {
	Type      EventType
	Actor     *Combatant
	Target    *Combatant
	Part      BodyPartType
	Damage    int
	Outcome   Outcome
	Narrative string
}

// Observer receives every event the engine emits, after the narrative has
// been written.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Output receives narrative lines.
type Output interface {
	WriteLine(text string) error
}

// EventWriter is implemented by outputs that render events themselves, for
// example to colour them. When the Output implements it, WriteEvent is called
// instead of WriteLine for every event carrying a narrative.
type EventWriter interface {
	WriteEvent(ev Event) error
}

// Prompter is implemented by outputs that can render a prompt without a
// trailing newline.
type Prompter interface {
	WritePrompt(prompt string) error
}

// Input supplies one player command line per call. ReadLine blocks until a
// line is available.
type Input interface {
	ReadLine() (string, error)
}
