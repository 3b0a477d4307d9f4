// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/introbird/internal/generation"
	"github.com/jonathan/introbird/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// innerWidth is the text width inside a box
	innerWidth = boxWidth - 4
)

// Printer handles formatted output for the CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are wrapped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, innerWidth) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSuggestions outputs each suggestion in its own box, titled by the mode's result title.
func (p *Printer) PrintSuggestions(mode types.ModeSpec, result *types.GenerationResult) {
	if result == nil || len(result.Suggestions) == 0 {
		p.printBox(strings.ToUpper(mode.Label), "No suggestions were returned.")
		return
	}

	for i, s := range result.Suggestions {
		title := mode.ResultTitle
		if len(result.Suggestions) > 1 {
			title = fmt.Sprintf("%s %d of %d", title, i+1, len(result.Suggestions))
		}
		p.printBox(strings.ToUpper(title), s)
	}
}

// PrintDraft outputs a refined draft.
func (p *Printer) PrintDraft(draft *types.RefinedDraft) {
	if draft == nil {
		return
	}
	p.printBox("REFINED DRAFT", draft.RefinedDraft)
}

// PrintSummary outputs a summary under the given title.
func (p *Printer) PrintSummary(title string, summary *types.Summary) {
	if summary == nil {
		return
	}
	p.printBox(strings.ToUpper(title), summary.Summary)
}

// PrintProfile outputs the fields that are set on a profile.
func (p *Printer) PrintProfile(profile *types.Profile) {
	if profile.IsEmpty() {
		p.printBox("PROFILE", "No profile fields are set.")
		return
	}

	var sb strings.Builder
	field := func(label string, v *string) {
		if v != nil && *v != "" {
			sb.WriteString(fmt.Sprintf("%-9s %s\n", label+":", *v))
		}
	}
	field("Name", profile.DisplayName())
	field("Email", profile.Email)
	field("Address", profile.Address)
	field("Bio", profile.BioText)
	field("Resume", profile.ResumeSummaryText)

	p.printBox("PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs one retry-loop event as a single status line.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintProgress(e generation.Event) {
	switch e.Kind {
	case generation.EventAttempt:
		fmt.Fprintf(p.out, "⏳ %s: attempt %d/%d\n", e.Operation, e.Attempt, e.MaxAttempts)
	case generation.EventRetry:
		fmt.Fprintf(p.out, "⚠ %s: attempt %d failed (%s), retrying in %dms\n",
			e.Operation, e.Attempt, truncate(e.Error, innerWidth), e.DelayMs)
	}
}

// pad right-pads s with spaces to innerWidth runes.
func pad(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= innerWidth {
		return s
	}
	return s + strings.Repeat(" ", innerWidth-n)
}

// wrap splits line into chunks of at most width runes, breaking at spaces where possible.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	var current []rune
	for _, word := range strings.Split(line, " ") {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				out = append(out, string(current))
				current = nil
			}
			out = append(out, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			out = append(out, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
