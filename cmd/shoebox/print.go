package main

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countPrinter groups large counts with thousands separators in console
// summaries, matching the report writers.
var countPrinter = message.NewPrinter(language.English)

// printProblemList renders a titled list of recoverable stage problems in
// the same "  ! message" shape the report writers use. Nothing is printed
// when the list is empty.
func printProblemList(out io.Writer, title string, problems []string, kind statusKind, colorize bool) {
	if len(problems) == 0 {
		return
	}
	fmt.Fprintf(out, "%s (%d):\n", title, len(problems))
	for _, problem := range problems {
		line := statusIndent + "! " + problem
		if colorize {
			line = statusKindColor(kind).Sprint(line)
		}
		fmt.Fprintln(out, line)
	}
}
