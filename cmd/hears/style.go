package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accentColor = lipgloss.Color("#5F87FF")
	mutedColor  = lipgloss.Color("#888888")
	errorColor  = lipgloss.Color("#D70000")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Align(lipgloss.Right)
)

// newTable returns a table with the shared header and cell styles.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// keyValue renders "key: value" with the key muted.
func keyValue(key, value string) string {
	return keyStyle.Render(key+":") + " " + valueStyle.Render(value)
}
