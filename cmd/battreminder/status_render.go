package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

type statusLine struct {
	label   string
	kind    statusKind
	message string
}

// statusReport collects the check lines printed below the battery table and
// aligns them on the longest label.
type statusReport struct {
	lines []statusLine
}

func (r *statusReport) add(label string, kind statusKind, message string) {
	r.lines = append(r.lines, statusLine{label: label, kind: kind, message: message})
}

func (r *statusReport) write(w io.Writer, colorize bool) {
	width := 0
	for _, line := range r.lines {
		width = max(width, len(line.label)+1)
	}
	for _, line := range r.lines {
		style := statusStyles[line.kind]
		text := fmt.Sprintf("  %-*s [%s]", width, line.label+":", style.label)
		if line.message != "" {
			text += " " + line.message
		}
		if colorize {
			text = style.color + text + ansiReset
		}
		fmt.Fprintln(w, text)
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
