// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a failure shown to the user together with the
	// extensions that caused it and what to try next.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("prepare the host").
	//		WithExtensions("x11").
	//		WithSuggestion("Run without --x11").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is the step that failed, as a verb phrase ("build image").
		Operation string
		// Extensions names the extensions responsible, if any.
		Extensions []string
		// Resource is the file, image or flag involved (optional).
		Resource    string
		Suggestions []string
		Cause       error
	}

	// ErrorContext builds an ActionableError.
	ErrorContext struct {
		operation   string
		extensions  []string
		resource    string
		suggestions []string
		cause       error
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders
//
//	failed to <operation> for extension(s) <names>: <resource>: <cause>
//
// leaving out the parts that are unset.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)

	switch len(e.Extensions) {
	case 0:
	case 1:
		msg.WriteString(" for extension ")
		msg.WriteString(e.Extensions[0])
	default:
		msg.WriteString(" for extensions ")
		msg.WriteString(strings.Join(e.Extensions, ", "))
	}

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns the message followed by one "  - " line per suggestion.
// verbose appends every error of the cause chain, numbered.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString(e.Error())
	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  - ")
			msg.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nCaused by:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}
	return msg.String()
}

// WithOperation sets the failed step.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithExtensions records the extensions responsible for the failure.
func (c *ErrorContext) WithExtensions(names ...string) *ErrorContext {
	c.extensions = append(c.extensions, names...)
	return c
}

// WithResource sets the file, image or flag involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends a hint. It may be called repeatedly.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Extensions:  c.extensions,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// BuildError is Build returning an untyped nil when no operation was set.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
