package extraction

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/SmartChain-HD/AI/internal/extraction")

// CollaboratorError records a failed call to an external collaborator.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Outcome is either the value a collaborator returned or the error it
// failed with. Callers branch on Ok and decide the fallback themselves.
type Outcome[T any] struct {
	Value T
	Err   *CollaboratorError
}

// Ok reports whether the call succeeded.
func (o Outcome[T]) Ok() bool {
	return o.Err == nil
}

// Call invokes fn inside a trace span and converts a returned error or a
// panic into a CollaboratorError. fn runs on its own goroutine so that a
// collaborator ignoring ctx cannot outlive the deadline: Call returns
// ctx.Err() as soon as ctx is done and abandons the late result.
func Call[T any](ctx context.Context, collaborator, op string, fn func(context.Context) (T, error)) (out Outcome[T]) {
	ctx, span := tracer.Start(ctx, collaborator+"."+op)
	span.SetAttributes(attribute.String("collaborator", collaborator))
	defer span.End()

	defer func() {
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Err.Error())
		}
	}()

	fail := func(err error) Outcome[T] {
		return Outcome[T]{Err: &CollaboratorError{Collaborator: collaborator, Op: op, Err: err}}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	type result struct {
		v   T
		err error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrCollaboratorPanic, r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fail(r.err)
		}
		return Outcome[T]{Value: r.v}
	case <-ctx.Done():
		return fail(ctx.Err())
	}
}
