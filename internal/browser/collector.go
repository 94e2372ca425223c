package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// JSErrorCollector records uncaught exceptions and console.error output
// from the page. Capturing a dashboard that failed to render its charts
// produces a useless screenshot; the collector makes such failures visible.
type JSErrorCollector struct {
	mu     sync.Mutex
	errors []string
}

// NewJSErrorCollector attaches a collector to the session's event stream.
func NewJSErrorCollector(s *Session) *JSErrorCollector {
	c := &JSErrorCollector{}

	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		c.mu.Lock()
		defer c.mu.Unlock()

		switch e := ev.(type) {
		case *runtime.EventExceptionThrown:
			desc := e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				desc = e.ExceptionDetails.Exception.Description
			}
			c.errors = append(c.errors, fmt.Sprintf("EXCEPTION: %s", desc))

		case *runtime.EventConsoleAPICalled:
			if e.Type == runtime.APITypeError {
				var parts []string
				for _, arg := range e.Args {
					if arg.Value != nil {
						parts = append(parts, string(arg.Value))
					} else if arg.Description != "" {
						parts = append(parts, arg.Description)
					}
				}
				if len(parts) > 0 {
					msg := strings.Join(parts, " ")
					if !strings.Contains(msg, "favicon") {
						c.errors = append(c.errors, fmt.Sprintf("console.error: %s", msg))
					}
				}
			}
		}
	})

	return c
}

// Errors returns a copy of the collected errors.
func (c *JSErrorCollector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.errors))
	copy(out, c.errors)
	return out
}

// HasErrors reports whether any page error was collected.
func (c *JSErrorCollector) HasErrors() bool {
	return len(c.Errors()) > 0
}
