package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/ipc"
)

// Colors follow the dashboard: the progress bar yellow and the dimmed grey.
var (
	ColorProgress = lipgloss.Color("#FFDC00")
	ColorDim      = lipgloss.Color("#888888")
	ColorHeader   = lipgloss.Color("#00009E")
)

var (
	StyleHeader   = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleDim      = lipgloss.NewStyle().Foreground(ColorDim)
	StyleProgress = lipgloss.NewStyle().Foreground(ColorProgress)
)

const barWidth = 30

// renderBox wraps content in a rounded-border box under a title.
func renderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(1).
		PaddingRight(1)
	return box.Render(StyleHeader.Render(title) + "\n\n" + content)
}

// renderBar draws progress (0-100) as a fixed-width bar.
func renderBar(progress int) string {
	progress = max(0, min(progress, 100))
	filled := progress * barWidth / 100
	return StyleProgress.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %3d%%", progress)
}

// formatEvent renders one stream event as a line of terminal output.
func formatEvent(e ipc.Event) string {
	switch e.Type {
	case events.ProgressUpdated:
		var p events.ProgressUpdatedEvent
		if err := json.Unmarshal(e.Data, &p); err == nil {
			line := fmt.Sprintf("%s %s  %s", StyleDim.Render(p.Trigger), p.Character, renderBar(p.Update.Progress))
			if p.Update.CountText != "" {
				line += "  " + p.Update.CountText
			} else {
				line += "  " + StyleDim.Render(p.Update.Instruction)
			}
			return line
		}
	case events.SessionEnded:
		var s events.SessionEvent
		if err := json.Unmarshal(e.Data, &s); err == nil {
			return StyleHeader.Render("session ended") + " " + StyleDim.Render(s.Reason)
		}
	}
	return fmt.Sprintf("%s %s", e.Type, e.Data)
}
