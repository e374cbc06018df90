package observability

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pageinject/internal/logfields"
)

// Span times one operation and logs its duration when ended.
type Span struct {
	ctx        context.Context
	logger     *slog.Logger
	name       string
	startTime  time.Time
	attributes []slog.Attr
	err        error
}

// StartSpan starts a span named name. A nil logger uses the default logger.
func StartSpan(ctx context.Context, logger *slog.Logger, name string) *Span {
	s := &Span{ctx: ctx, logger: Logger(ctx, logger), name: name, startTime: time.Now()}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "Span started", slog.String("span", name))
	return s
}

// SetAttribute sets an attribute reported when the span ends.
func (s *Span) SetAttribute(attr slog.Attr) {
	s.attributes = append(s.attributes, attr)
}

// RecordError records the error reported when the span ends.
func (s *Span) RecordError(err error) {
	if err != nil {
		s.err = err
	}
}

// Duration returns the time elapsed since the span started.
func (s *Span) Duration() time.Duration {
	return time.Since(s.startTime)
}

// End logs the span duration, at warn level when an error was recorded.
func (s *Span) End() time.Duration {
	d := s.Duration()
	attrs := append([]slog.Attr{
		slog.String("span", s.name),
		logfields.DurationMS(float64(d.Microseconds()) / 1000),
	}, s.attributes...)
	level := slog.LevelDebug
	if s.err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, logfields.Error(s.err))
	}
	s.logger.LogAttrs(s.ctx, level, "Span ended", attrs...)
	return d
}
