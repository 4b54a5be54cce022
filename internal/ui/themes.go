package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/genoassist-br/genoassist/internal/config"
	"github.com/muesli/termenv"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	// UI colors
	Border     lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Disabled   lipgloss.AdaptiveColor
	ButtonText lipgloss.AdaptiveColor
}

// buildTheme creates a theme with the given colors
func buildTheme(name string, primary, secondary, success, warning, errorColor, border, foreground, muted, disabled, buttonText [2]string) Theme {
	return Theme{
		Name:       name,
		Primary:    lipgloss.AdaptiveColor{Light: primary[0], Dark: primary[1]},
		Secondary:  lipgloss.AdaptiveColor{Light: secondary[0], Dark: secondary[1]},
		Success:    lipgloss.AdaptiveColor{Light: success[0], Dark: success[1]},
		Warning:    lipgloss.AdaptiveColor{Light: warning[0], Dark: warning[1]},
		Error:      lipgloss.AdaptiveColor{Light: errorColor[0], Dark: errorColor[1]},
		Border:     lipgloss.AdaptiveColor{Light: border[0], Dark: border[1]},
		Foreground: lipgloss.AdaptiveColor{Light: foreground[0], Dark: foreground[1]},
		Muted:      lipgloss.AdaptiveColor{Light: muted[0], Dark: muted[1]},
		Disabled:   lipgloss.AdaptiveColor{Light: disabled[0], Dark: disabled[1]},
		ButtonText: lipgloss.AdaptiveColor{Light: buttonText[0], Dark: buttonText[1]},
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default",
		[2]string{"#2563EB", "#3B82F6"}, [2]string{"#475569", "#94A3B8"},
		[2]string{"#16A34A", "#22C55E"}, [2]string{"#D97706", "#F59E0B"}, [2]string{"#B91C1C", "#EF4444"},
		[2]string{"#E2E8F0", "#334155"}, [2]string{"#1E293B", "#F1F5F9"}, [2]string{"#64748B", "#94A3B8"},
		[2]string{"#CBD5E1", "#475569"}, [2]string{"#FFFFFF", "#FFFFFF"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000080", "#8080FF"}, [2]string{"#000000", "#FFFFFF"},
		[2]string{"#006600", "#00FF00"}, [2]string{"#CC6600", "#FFAA00"}, [2]string{"#CC0000", "#FF4444"},
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#000000", "#FFFFFF"}, [2]string{"#444444", "#CCCCCC"},
		[2]string{"#999999", "#666666"}, [2]string{"#FFFFFF", "#000000"})

	MinimalTheme = buildTheme("minimal",
		[2]string{"#2D3748", "#E2E8F0"}, [2]string{"#718096", "#A0AEC0"},
		[2]string{"#2F855A", "#68D391"}, [2]string{"#C05621", "#F6AD55"}, [2]string{"#C53030", "#FC8181"},
		[2]string{"#E2E8F0", "#2D3748"}, [2]string{"#2D3748", "#F7FAFC"}, [2]string{"#A0AEC0", "#718096"},
		[2]string{"#E2E8F0", "#4A5568"}, [2]string{"#FFFFFF", "#1A202C"})
)

// Current active theme
var currentTheme = DefaultTheme

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "", "default":
		SetTheme(&DefaultTheme)
		return true
	case "high-contrast":
		SetTheme(&HighContrastTheme)
		return true
	case "minimal":
		SetTheme(&MinimalTheme)
		return true
	default:
		return false
	}
}

// detectedProfile is the profile in use before colors were disabled
var detectedProfile *termenv.Profile

// SetColorEnabled switches lipgloss between the detected color profile and
// plain ASCII
func SetColorEnabled(enabled bool) {
	if enabled {
		if detectedProfile != nil {
			lipgloss.SetColorProfile(*detectedProfile)
			detectedProfile = nil
		}
		return
	}
	if detectedProfile == nil {
		profile := lipgloss.ColorProfile()
		detectedProfile = &profile
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// IsColorDisabled reports whether styles render without colors
func IsColorDisabled() bool {
	return lipgloss.ColorProfile() == termenv.Ascii
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return append([]string(nil), config.Themes...)
}

// GetStyles builds the styles for the current theme
func GetStyles() *Styles {
	theme := GetTheme()

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		Label: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Button: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.ButtonText).
			Bold(true).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.ButtonText).
			Bold(true).
			Underline(true).
			Padding(0, 2),

		ButtonDisabled: lipgloss.NewStyle().
			Background(theme.Disabled).
			Foreground(theme.ButtonText).
			Padding(0, 2),

		ErrorBanner: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Error).
			Foreground(theme.Error).
			Padding(0, 1),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		CardTitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Bold(true),

		Report: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Disclaimer: lipgloss.NewStyle().
			Foreground(theme.Warning),
	}
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Form styles
	Input          lipgloss.Style
	InputFocused   lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style

	// Result styles
	ErrorBanner lipgloss.Style
	Card        lipgloss.Style
	CardTitle   lipgloss.Style
	Report      lipgloss.Style
	Disclaimer  lipgloss.Style
}
