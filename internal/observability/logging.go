// Package observability carries build-scoped logging context and lightweight spans.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pageinject/internal/logfields"
)

// scope is what a context knows about the build it belongs to.
type scope struct {
	buildID string
	stage   string
}

type scopeKey struct{}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// WithBuildID tags ctx with the ID of the running build.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	s := scopeOf(ctx)
	s.buildID = buildID
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithStage tags ctx with the pipeline stage, e.g. "build" or "watch".
func WithStage(ctx context.Context, stage string) context.Context {
	s := scopeOf(ctx)
	s.stage = stage
	return context.WithValue(ctx, scopeKey{}, s)
}

// BuildID returns the build ID carried by ctx, or "".
func BuildID(ctx context.Context) string { return scopeOf(ctx).buildID }

// Stage returns the stage carried by ctx, or "".
func Stage(ctx context.Context) string { return scopeOf(ctx).stage }

// Logger returns base, or the default logger, with the build ID and stage of
// ctx attached. base is returned unchanged when ctx carries neither.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	s := scopeOf(ctx)
	var args []any
	if s.buildID != "" {
		args = append(args, logfields.BuildID(s.buildID))
	}
	if s.stage != "" {
		args = append(args, logfields.Stage(s.stage))
	}
	if args == nil {
		return base
	}
	return base.With(args...)
}
