package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
)

// Context is passed to every command's Run method.
type Context struct {
	Ctx        context.Context
	Session    *service.Session
	Trackers   *service.TrackerService
	Completion *service.CompletionService
	Clock      service.Clock
	Calendar   model.Calendar
	Out        io.Writer
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// day parses a YYYY-MM-DD flag; empty means today.
func (c *Context) day(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return c.Calendar.StartOfDay(c.Clock.Now()), nil
	}
	d, err := c.Calendar.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return d, nil
}
