package combat

import (
	"errors"
	"strconv"
	"strings"
)

// CommandType identifies a player action.
// The zero value (CmdUnknown) is intentionally invalid.
type CommandType int

const (
	CmdUnknown CommandType = iota
	CmdMoveCloser
	CmdMoveFurther
	CmdTakeCover
	CmdLeaveCover
	CmdShoot
	CmdReload
	CmdFlee
	CmdScope
	CmdStatus
	CmdHelp
)

// String returns the canonical command word.
func (c CommandType) String() string {
	switch c {
	case CmdMoveCloser:
		return "move closer"
	case CmdMoveFurther:
		return "move further"
	case CmdTakeCover:
		return "take cover"
	case CmdLeaveCover:
		return "leave cover"
	case CmdShoot:
		return "shoot"
	case CmdReload:
		return "reload"
	case CmdFlee:
		return "flee"
	case CmdScope:
		return "scope"
	case CmdStatus:
		return "status"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Command is one parsed player action.
type Command struct {
	Type CommandType
	// Target is the 1-based enemy index for CmdShoot; 0 means the first
	// living enemy.
	Target int
	Part   BodyPartType
	// Location is the optional destination named in a flee command.
	Location string
}

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrShootUsage     = errors.New("usage: shoot [target#] <head|thorax|arm|leg>")
	ErrBadTarget      = errors.New("target must be a positive enemy number")
)

// ParseCommand parses one line of player input. Words are case-insensitive.
// Numeric shortcuts 1 to 6 select move closer, move further, take cover, shoot,
// reload and flee. An unrecognised body part name maps to Thorax.
//
// Postcondition: returns a Command with Type != CmdUnknown, or an error.
func ParseCommand(line string) (Command, error) {
	raw := strings.Fields(strings.TrimSpace(line))
	if len(raw) == 0 {
		return Command{}, ErrEmptyCommand
	}
	words := make([]string, len(raw))
	for i, w := range raw {
		words[i] = strings.ToLower(w)
	}

	verb, args := words[0], words[1:]
	switch verb {
	case "1", "closer", "advance":
		return Command{Type: CmdMoveCloser}, nil
	case "2", "further", "farther", "back":
		return Command{Type: CmdMoveFurther}, nil
	case "3", "cover", "hide":
		return Command{Type: CmdTakeCover}, nil
	case "4", "shoot", "fire":
		return parseShoot(args)
	case "5", "reload":
		return Command{Type: CmdReload}, nil
	case "6", "flee", "run", "escape":
		return Command{Type: CmdFlee, Location: strings.Join(raw[1:], " ")}, nil
	case "scope":
		return Command{Type: CmdScope}, nil
	case "status", "look", "l":
		return Command{Type: CmdStatus}, nil
	case "help", "?":
		return Command{Type: CmdHelp}, nil
	case "move":
		if len(args) == 1 {
			switch args[0] {
			case "closer", "forward":
				return Command{Type: CmdMoveCloser}, nil
			case "further", "farther", "back":
				return Command{Type: CmdMoveFurther}, nil
			}
		}
	case "take":
		if len(args) == 1 && args[0] == "cover" {
			return Command{Type: CmdTakeCover}, nil
		}
	case "leave", "break":
		if len(args) == 1 && args[0] == "cover" {
			return Command{Type: CmdLeaveCover}, nil
		}
	}
	return Command{}, ErrUnknownCommand
}

func parseShoot(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrShootUsage
	}
	cmd := Command{Type: CmdShoot}
	if n, err := strconv.Atoi(args[0]); err == nil {
		if n <= 0 {
			return Command{}, ErrBadTarget
		}
		if len(args) < 2 {
			return Command{}, ErrShootUsage
		}
		cmd.Target = n
		args = args[1:]
	} else if len(args) > 1 {
		// only "shoot <part>" may omit the target
		return Command{}, ErrBadTarget
	}
	cmd.Part = ParseBodyPart(args[0])
	return cmd, nil
}
