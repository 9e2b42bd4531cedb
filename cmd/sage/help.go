package main

import (
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	helpHeadingStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	helpCommandStyle = lipgloss.NewStyle().Foreground(colorPrimaryLight)
)

// styled wraps a lipgloss style into a template func that only colors
// output when stdout is a terminal.
func styled(style lipgloss.Style) func(string) string {
	return func(s string) string {
		if isTTY() {
			return style.Render(s)
		}
		return s
	}
}

const helpTemplate = `{{with .Long}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{heading "Usage:"}}
  {{command .CommandPath}}{{if .HasAvailableSubCommands}} {{dim "[command]"}}{{end}}{{if .HasAvailableFlags}} {{dim "[flags]"}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}{{heading "Commands:"}}
{{range .Commands}}{{if .IsAvailableCommand}}  {{command (rpad .Name .NamePadding)}} {{.Short}}
{{end}}{{end}}
{{end}}{{if .HasAvailableLocalFlags}}{{heading "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}{{heading "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}{{dim "Use"}} {{command (printf "%s [command] --help" .CommandPath)}} {{dim "for more information."}}
{{end}}`

// initHelp installs the branded help template on a command tree.
func initHelp(root *cobra.Command) {
	funcs := template.FuncMap{
		"heading": styled(helpHeadingStyle),
		"command": styled(helpCommandStyle),
		"dim":     styled(mutedStyle),
	}
	for name, fn := range funcs {
		cobra.AddTemplateFunc(name, fn)
	}
	applyHelpTemplate(root)
}

func applyHelpTemplate(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
	for _, sub := range cmd.Commands() {
		applyHelpTemplate(sub)
	}
}
