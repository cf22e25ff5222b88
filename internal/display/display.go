// Package display renders command listings and settings for the terminal.
package display

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/ava/internal/command"
)

// Format selects how a listing is rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatText  Format = "text"
)

const (
	listingTitle     = "Groups Commands"
	commandSeparator = " --- "
)

var ErrUnknownFormat = errors.New("unknown format")

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatText)}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("%w=%s", ErrUnknownFormat, s)
}

// Commands writes the listing in the given format.
func Commands(w io.Writer, listing []command.Listing, f Format) error {
	switch f {
	case FormatText:
		for _, l := range listing {
			if _, err := fmt.Fprintf(w, "%s=[%s]\n", l.Group, strings.Join(l.Commands, ", ")); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case FormatTable:
		_, err := fmt.Fprintln(w, renderTable(w, listing))
		return err
	}
	return fmt.Errorf("%w=%s", ErrUnknownFormat, f)
}

func renderTable(w io.Writer, listing []command.Listing) string {
	re := lipgloss.NewRenderer(w)
	groupStyle := re.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Align(lipgloss.Right).Padding(0, 1)
	commandStyle := re.NewStyle().Foreground(lipgloss.Color("2")).Padding(0, 1)
	headerStyle := re.NewStyle().Bold(true).Padding(0, 1)

	rows := make([][]string, 0, len(listing))
	for _, l := range listing {
		rows = append(rows, []string{l.Group, strings.Join(l.Commands, commandSeparator)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(re.NewStyle().Faint(true)).
		Headers("group", "commands").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return groupStyle
			default:
				return commandStyle
			}
		})

	body := t.String()
	title := re.NewStyle().Italic(true).Width(lipgloss.Width(body)).Align(lipgloss.Center).Render(listingTitle)
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// Value writes v as YAML. Scalars are written on their own line.
func Value(w io.Writer, v any) error {
	if s, ok := v.(fmt.Stringer); ok {
		_, err := fmt.Fprintln(w, s.String())
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
