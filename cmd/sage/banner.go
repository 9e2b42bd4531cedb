package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Leaf-and-light styles using shared brand colors from styles.go
	bannerDimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	bannerStarStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	bannerSparkStyle   = lipgloss.NewStyle().Foreground(colorPrimaryLight)
	bannerTitleStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	bannerTaglineStyle = lipgloss.NewStyle().Foreground(colorPrimaryDark).Italic(true)
	bannerVersionStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func renderBanner() string {
	// Build styled characters
	dot := bannerDimStyle.Render("·")
	period := bannerDimStyle.Render(".")
	apos := bannerDimStyle.Render("'")
	leaf := bannerStarStyle.Render("❧")
	spark := bannerSparkStyle.Render("✧")
	title := bannerTitleStyle.Render("SAGE")

	lines := []string{
		"        " + period + " " + dot + " " + leaf + " " + dot + " " + period,
		"      " + dot + "   " + spark + " " + dot + " " + spark + "   " + dot,
		"    " + dot + "     " + title + "     " + dot,
		"      " + dot + "   " + spark + " " + dot + " " + spark + "   " + dot,
		"        " + apos + " " + dot + " " + leaf + " " + dot + " " + apos,
	}

	return strings.Join(lines, "\n")
}

func renderBannerWithTagline() string {
	banner := renderBanner()
	tagline := bannerTaglineStyle.Render("    learning, adapted")
	ver := bannerVersionStyle.Render("          " + version)

	return strings.Join([]string{banner, tagline, ver}, "\n")
}
