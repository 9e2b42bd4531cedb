package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Brand palette. The greens come from the sage leaf.
var (
	colorPrimary      = lipgloss.Color("#6B9362")
	colorPrimaryLight = lipgloss.Color("#8FB487")
	colorPrimaryDark  = lipgloss.Color("#4E7047")
	colorText         = lipgloss.Color("#F2F3F3")
	colorMuted        = lipgloss.Color("240")
	colorSuccess      = lipgloss.Color("#22C55E")
	colorWarning      = lipgloss.Color("#F59E0B")
	colorError        = lipgloss.Color("#EF4444")
)

var mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

// tone pairs a status icon with its terminal styling.
type tone struct {
	icon  string
	style lipgloss.Style
}

var (
	toneSuccess = tone{"✓", lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)}
	toneError   = tone{"✗", lipgloss.NewStyle().Foreground(colorError).Bold(true)}
	toneWarning = tone{"⚠", lipgloss.NewStyle().Foreground(colorWarning).Bold(true)}
	toneInfo    = tone{"●", lipgloss.NewStyle().Foreground(colorPrimary)}
)

// isTTY reports whether stdout is an interactive terminal.
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func (t tone) printf(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	icon := t.icon
	if isTTY() {
		icon = t.style.Render(icon)
	}
	fmt.Fprintf(w, "%s %s\n", icon, msg)
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	toneSuccess.printf(w, format, args...)
}

func printError(w io.Writer, format string, args ...interface{}) {
	toneError.printf(w, format, args...)
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	toneWarning.printf(w, format, args...)
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	toneInfo.printf(w, format, args...)
}

// printMuted prints secondary text dimmed in TTY mode.
func printMuted(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isTTY() {
		msg = mutedStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}

// renderMarkdown renders markdown-formatted content with glamour. Content
// without markdown syntax, or any render failure, falls back to plain text.
func renderMarkdown(content string) string {
	if !isTTY() || !hasMarkdown(content) {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(rendered)
}

// hasMarkdown sniffs for markdown syntax, most specific markers first.
func hasMarkdown(content string) bool {
	markers := []string{
		"```",
		"## ",
		"# ",
		"**",
		"1. ",
		"- ",
		"* ",
		"](http",
		"`",
	}
	for _, marker := range markers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
