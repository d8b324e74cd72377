package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the turtleshot banner with its version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Green to teal, one step per line.
	lines := []struct{ text, color string }{
		{`   _____           _   _           _           _   `, "#4ade80"},
		{`  |_   _|   _ _ __| |_| | ___  ___| |__   ___ | |_ `, "#34d399"},
		{`    | || | | | '__| __| |/ _ \/ __| '_ \ / _ \| __|`, "#2dd4bf"},
		{`    | || |_| | |  | |_| |  __/\__ \ | | | (_) | |_ `, "#22d3ee"},
		{`    |_| \__,_|_|   \__|_|\___||___/_| |_|\___/ \__|`, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("    "+version).Faint())
	fmt.Fprintln(w)
}
