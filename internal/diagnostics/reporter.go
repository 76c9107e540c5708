package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Reporter is a Sink that renders diagnostics for humans: a colored
// severity marker, the message and location, then context and suggestions.
type Reporter struct {
	mu        sync.Mutex
	out       io.Writer
	verbose   bool
	useColors bool
	minimum   Severity
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer, verbose, useColors bool) *Reporter {
	return &Reporter{
		out:       out,
		verbose:   verbose,
		useColors: useColors,
		minimum:   SeverityWarning,
	}
}

// SetMinimum changes the lowest severity that gets rendered
func (r *Reporter) SetMinimum(s Severity) {
	r.minimum = s
}

// Report renders d
func (r *Reporter) Report(d Diagnostic) {
	if d.Severity < r.minimum {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.printHeader(d)

	if !d.Location.IsEmpty() {
		fmt.Fprintf(r.out, "   at %s\n", d.Location)
	}

	if r.verbose && len(d.Context) > 0 {
		r.printContext(d.Context)
	}

	if len(d.Suggestions) > 0 {
		r.printSuggestions(d.Suggestions)
	}

	if r.verbose && d.PassID != "" {
		fmt.Fprintf(r.out, "   pass: %s\n", d.PassID)
	}
}

func (r *Reporter) printHeader(d Diagnostic) {
	marker := "!"
	attrs := []color.Attribute{color.FgYellow, color.Bold}
	switch d.Severity {
	case SeverityError:
		marker = "x"
		attrs = []color.Attribute{color.FgRed, color.Bold}
	case SeverityInfo:
		marker = "i"
		attrs = []color.Attribute{color.FgBlue}
	}

	if r.useColors {
		c := color.New(attrs...)
		c.EnableColor()
		c.Fprintf(r.out, "%s ", marker)
	} else {
		fmt.Fprintf(r.out, "%s ", marker)
	}
	fmt.Fprintf(r.out, "%s [%s]\n", d.Message, d.Code)
}

func (r *Reporter) printContext(context map[string]interface{}) {
	important := []string{"class", "parameter", "decorator", "decorators"}
	printed := make(map[string]bool)

	fmt.Fprintf(r.out, "   Context:\n")
	for _, key := range important {
		if value, ok := context[key]; ok {
			fmt.Fprintf(r.out, "      %s: %v\n", formatContextKey(key), value)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "      %s: %v\n", formatContextKey(key), context[key])
	}
}

func (r *Reporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "   Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "      %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "         %s\n", line)
			}
		}
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
