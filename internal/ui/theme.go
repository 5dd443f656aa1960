package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/doopie/internal/config"
)

// Catppuccin Mocha palette, mutable so config can override.
var (
	ColorTitle     = lipgloss.Color("#cba6f7")
	ColorLabel     = lipgloss.Color("#89b4fa")
	ColorValue     = lipgloss.Color("#cdd6f4")
	ColorUnique    = lipgloss.Color("#a6e3a1")
	ColorDuplicate = lipgloss.Color("#f9e2af")
	ColorBorder    = lipgloss.Color("#5a6278")
)

// Pre-built styles, rebuilt by rebuildStyles() after color changes.
var (
	styleTitle     lipgloss.Style
	styleHeader    lipgloss.Style
	styleLabel     lipgloss.Style
	styleValue     lipgloss.Style
	styleUnique    lipgloss.Style
	styleDuplicate lipgloss.Style
	styleBorder    lipgloss.Style
	styleFootnote  lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorTitle)
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorLabel).Padding(0, 1)
	styleLabel = lipgloss.NewStyle().Foreground(ColorLabel).Padding(0, 1)
	styleValue = lipgloss.NewStyle().Foreground(ColorValue).Padding(0, 1).Align(lipgloss.Right)
	styleUnique = lipgloss.NewStyle().Foreground(ColorUnique).Padding(0, 1).Align(lipgloss.Right)
	styleDuplicate = lipgloss.NewStyle().Foreground(ColorDuplicate).Padding(0, 1).Align(lipgloss.Right)
	styleBorder = lipgloss.NewStyle().Foreground(ColorBorder)
	styleFootnote = lipgloss.NewStyle().Foreground(ColorBorder).Italic(true)
}

// ApplyTheme overrides colors from a config ThemeConfig and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	if tc.Title != nil {
		ColorTitle = lipgloss.Color(*tc.Title)
	}
	if tc.Label != nil {
		ColorLabel = lipgloss.Color(*tc.Label)
	}
	if tc.Value != nil {
		ColorValue = lipgloss.Color(*tc.Value)
	}
	if tc.Unique != nil {
		ColorUnique = lipgloss.Color(*tc.Unique)
	}
	if tc.Duplicate != nil {
		ColorDuplicate = lipgloss.Color(*tc.Duplicate)
	}
	if tc.Border != nil {
		ColorBorder = lipgloss.Color(*tc.Border)
	}
	rebuildStyles()
}
