// Package diagnostics carries structured events out of a reflection pass.
// The engine never prints; it hands Diagnostics to a Sink, and the caller
// decides whether to collect, render or ignore them.
package diagnostics

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/toyz/ngreflect/internal/errors"
)

// Severity ranks a diagnostic
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the severity name
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one structured event
type Diagnostic struct {
	Severity    Severity
	Code        errors.ErrorCode
	Message     string
	Location    errors.SourceLocation
	Context     map[string]interface{}
	Suggestions []string
	PassID      string
	Err         error
}

// String renders the diagnostic on one line
func (d Diagnostic) String() string {
	if d.Location.IsEmpty() {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Code, d.Message)
}

// Sink receives diagnostics
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(d Diagnostic)

// Report calls f(d)
func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

// Discard drops every diagnostic
var Discard Sink = SinkFunc(func(Diagnostic) {})

// FromError converts an error into an error-severity diagnostic. Rich data
// is taken from the first ReflectError in the chain.
func FromError(err error, passID string) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Code:     errors.UnknownErrorCode,
		Message:  err.Error(),
		PassID:   passID,
		Err:      err,
	}

	var re errors.ReflectError
	if stderrors.As(err, &re) {
		d.Code = re.ErrorCode()
		d.Location = re.Location()
		d.Context = re.Context()
		d.Suggestions = re.Suggestions()
		if base, ok := re.(interface{ BaseMessage() string }); ok {
			d.Message = base.BaseMessage()
		}
	}
	return d
}

// Collector stores diagnostics in memory
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Report stores d
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns a copy of everything reported so far
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Count returns how many diagnostics of severity were reported
func (c *Collector) Count(severity Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error diagnostic was reported
func (c *Collector) HasErrors() bool {
	return c.Count(SeverityError) > 0
}

// Multi fans a diagnostic out to several sinks
type Multi []Sink

// Report forwards d to every sink
func (m Multi) Report(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}
