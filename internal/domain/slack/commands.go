package slack

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	CmdCapture CommandType = "capture"
	CmdHelp    CommandType = "help"
)

type Command struct {
	Type CommandType
	Raw  string
}

// ParseCommand maps the text after the slash command to a command. An empty text
// captures, as do the aliases accepted by older deployments.
func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(text)))

	cmd := &Command{Raw: text}

	if len(parts) == 0 {
		cmd.Type = CmdCapture
		return cmd, nil
	}

	switch parts[0] {
	case "test", "now", "testscreen", "screenshot":
		cmd.Type = CmdCapture
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

func GetHelpText(command string) string {
	if command == "" {
		command = "/screenshot"
	}
	return `*Available Commands:*

• ` + "`" + command + "`" + ` - Take a screenshot now and post it in this channel
• ` + "`" + command + " help`" + ` - Show this message

The daily screenshot is posted automatically to the configured channel.`
}
