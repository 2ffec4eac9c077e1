// Package cli parses recite's command line.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun      Command = "run"
	CommandToggle   Command = "toggle"
	CommandStop     Command = "stop"
	CommandStatus   Command = "status"
	CommandText     Command = "text"
	CommandPassages Command = "passages"
	CommandSpeak    Command = "speak"
	CommandDevices  Command = "devices"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

// argPolicy says how many positional arguments a command accepts.
type argPolicy int

const (
	argsNone argPolicy = iota
	argsOptional
	argsRequired
)

var validCommands = map[Command]argPolicy{
	CommandRun:      argsNone,
	CommandToggle:   argsNone,
	CommandStop:     argsNone,
	CommandStatus:   argsNone,
	CommandText:     argsRequired,
	CommandPassages: argsNone,
	CommandSpeak:    argsOptional,
	CommandDevices:  argsNone,
	CommandDoctor:   argsNone,
	CommandVersion:  argsNone,
	CommandHelp:     argsNone,
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Text       string
	Level      string
	Args       []string
	ShowHelp   bool
}

// Payload returns the command's positional text, joined with single spaces.
func (p Parsed) Payload() string {
	return strings.Join(p.Args, " ")
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config", "--text", "--level":
			i++
			if i >= len(args) {
				return Parsed{}, fmt.Errorf("%s requires a value", arg)
			}
			switch arg {
			case "--config":
				parsed.ConfigPath = args[i]
			case "--text":
				parsed.Text = args[i]
			case "--level":
				parsed.Level = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			policy, ok := validCommands[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			rest := args[i+1:]
			switch {
			case policy == argsNone && len(rest) > 0:
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			case policy == argsRequired && strings.TrimSpace(strings.Join(rest, "")) == "":
				return Parsed{}, fmt.Errorf("command %q requires an argument", arg)
			}
			parsed.Args = append([]string(nil), rest...)
			return parsed, nil
		}
	}

	if parsed.Command == CommandHelp && (parsed.Text != "" || parsed.Level != "") {
		return Parsed{}, errors.New("--text and --level need a command")
	}
	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--text TEXT] [--level LEVEL] <command> [args]

Commands:
  run             Open the reading-practice terminal UI
  toggle          Start a recording, or stop and score the running one
  stop            Stop the running recording and score it
  status          Print the current session state
  text PASSAGE    Replace the passage of the running session
  passages        List passages offered by the scoring service
  speak [TEXT]    Read TEXT (or the passage) aloud
  devices         List available input devices
  doctor          Run configuration and environment checks
  version         Print version information
  help            Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/recite/config.toml)
  --text TEXT     Passage to read instead of fetching one
  --level LEVEL   Preferred passage level
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
