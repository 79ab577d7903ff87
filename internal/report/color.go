package report

// ANSI escape sequences for console output.
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

// Colorize wraps text in color, unless color output is disabled.
func Colorize(text, color string) string {
	if NoColor {
		return text
	}
	return color + text + ColorReset
}

// NoColor disables Colorize.
var NoColor bool
