package terminal

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownCommand is returned for input that is not a player command.
var ErrUnknownCommand = errors.New("unknown command")

// CommandKind identifies an interactive player command.
type CommandKind int

const (
	CommandTogglePlay CommandKind = iota // p
	CommandPlayVerse                     // v N
	CommandStopVerse                     // s
	CommandNext                          // n
	CommandPrevious                      // b
	CommandVolume                        // vol X
	CommandSeek                          // seek S
	CommandReciter                       // r ID
	CommandToggleRule                    // t RULE
	CommandShow                          // l
	CommandHelp                          // h, ?
	CommandQuit                          // q
)

// Command is a parsed interactive command.
type Command struct {
	Kind   CommandKind
	Int    int     // Verse number or reciter id
	Number float64 // Volume or seek position
	Arg    string  // Rule id
}

// Help lists the interactive commands.
const Help = `p        play / pause the chapter
v N      play verse N alone (again to stop)
s        stop the verse
n / b    next / previous chapter
vol X    volume, 0-1
seek S   seek to S seconds
r ID     switch reciter
t RULE   toggle a tajweed rule
l        show the page
q        quit`

// ParseCommand parses one input line.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, errors.Mark(errors.New("empty command"), ErrUnknownCommand)
	}

	name, args := fields[0], fields[1:]
	switch name {
	case "p", "play", "pause":
		return noArgs(CommandTogglePlay, args)
	case "s", "stop":
		return noArgs(CommandStopVerse, args)
	case "n", "next":
		return noArgs(CommandNext, args)
	case "b", "prev", "previous":
		return noArgs(CommandPrevious, args)
	case "l", "show":
		return noArgs(CommandShow, args)
	case "h", "?", "help":
		return noArgs(CommandHelp, args)
	case "q", "quit", "exit":
		return noArgs(CommandQuit, args)
	case "v", "verse":
		n, err := intArg(name, args)
		return Command{Kind: CommandPlayVerse, Int: n}, err
	case "r", "reciter":
		n, err := intArg(name, args)
		return Command{Kind: CommandReciter, Int: n}, err
	case "vol", "volume":
		x, err := floatArg(name, args)
		return Command{Kind: CommandVolume, Number: x}, err
	case "seek":
		x, err := floatArg(name, args)
		return Command{Kind: CommandSeek, Number: x}, err
	case "t", "rule":
		if len(args) != 1 {
			return Command{}, errors.Newf("%s: expected a rule id", name)
		}
		return Command{Kind: CommandToggleRule, Arg: args[0]}, nil
	default:
		return Command{}, errors.Mark(errors.Newf("%q", name), ErrUnknownCommand)
	}
}

func noArgs(kind CommandKind, args []string) (Command, error) {
	if len(args) > 0 {
		return Command{}, errors.Newf("unexpected argument %q", args[0])
	}
	return Command{Kind: kind}, nil
}

func intArg(name string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.Newf("%s: expected one number", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, errors.Newf("%s: invalid number %q", name, args[0])
	}
	return n, nil
}

func floatArg(name string, args []string) (float64, error) {
	if len(args) != 1 {
		return 0, errors.Newf("%s: expected one number", name)
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, errors.Newf("%s: invalid number %q", name, args[0])
	}
	return x, nil
}
