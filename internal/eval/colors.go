package eval

import (
	"os"
)

// Colors holds ANSI color codes for terminal output
type Colors struct {
	Red   string
	Green string
	Reset string
	Bold  string
}

// TermColors contains the color codes for terminal output
var TermColors Colors

func init() {
	TermColors = detectColors(os.Getenv)
}

// detectColors disables colors when NO_COLOR is set or TERM is dumb.
func detectColors(getenv func(string) string) Colors {
	if getenv("NO_COLOR") != "" || getenv("TERM") == "dumb" {
		return Colors{}
	}
	return Colors{
		Red:   "\033[31m",
		Green: "\033[32m",
		Reset: "\033[0m",
		Bold:  "\033[1m",
	}
}

// Colorize returns the text wrapped in the given color
func (c Colors) Colorize(text, color string) string {
	if color == "" {
		return text
	}
	return color + text + c.Reset
}
