package command

import (
	"regexp"
	"strings"
)

var lineRe = regexp.MustCompile(`^/(\w+)(?: (.+))?$`)

// Command is one parsed input line. The verb is lowercased; Args holds
// the whitespace-split remainder.
type Command struct {
	Verb string
	Args []string
}

// Parse applies the line grammar. ok is false for anything that is not
// a command line, including plain chat text.
func Parse(line string) (Command, bool) {
	m := lineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Command{}, false
	}

	cmd := Command{Verb: strings.ToLower(m[1])}
	if m[2] != "" {
		cmd.Args = strings.Fields(m[2])
	}
	return cmd, true
}
