// Package display renders stats samples for a terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/notchkit/island/internal/models"
)

const barWidth = 10

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(5)
	dimStyle   = lipgloss.NewStyle().Faint(true)

	pressureStyles = map[models.PressureLevel]lipgloss.Style{
		models.PressureNormal: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		models.PressureYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.PressureRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

// Console writes one rendered block per sample.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Write renders s followed by a blank line.
func (c *Console) Write(s models.StatsSample) error {
	_, err := fmt.Fprintln(c.w, Render(s)+"\n")
	return err
}

// Render formats a sample as a compact multi-line block.
func Render(s models.StatsSample) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("CPU"))
	fmt.Fprintf(&b, " %5.1f%%", s.CPUOverall)
	if s.CPUTemp != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %.0f°C", *s.CPUTemp)))
	}
	b.WriteString("\n")
	for i, pct := range s.CPUCores {
		fmt.Fprintf(&b, "  %2d %s %5.1f%%\n", i, bar(pct), pct)
	}

	mem := s.Memory
	memLine := fmt.Sprintf(" %s / %s  %s",
		humanize.IBytes(mem.UsedBytes), humanize.IBytes(mem.TotalBytes), mem.Pressure)
	b.WriteString(labelStyle.Render("RAM"))
	b.WriteString(pressureStyles[mem.Pressure].Render(memLine))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("SSD"))
	fmt.Fprintf(&b, " %s / %s  %.1f%%\n",
		humanize.Bytes(s.Disk.UsedBytes), humanize.Bytes(s.Disk.TotalBytes), s.Disk.Percent)

	b.WriteString(labelStyle.Render("GPU"))
	marker := ""
	if s.GPU.Estimated {
		marker = "~"
	}
	fmt.Fprintf(&b, " %s%.1f%%", marker, s.GPU.Percent)
	if s.GPUTemp != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %.0f°C", *s.GPUTemp)))
	}

	return b.String()
}

func bar(pct float64) string {
	filled := int(models.ClampPercent(pct) / 100 * barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
