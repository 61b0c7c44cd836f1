// Package fallback runs alternatives in order until one succeeds.
package fallback

import (
	"context"
	"errors"
)

// ErrExhausted is returned when no producers were supplied.
var ErrExhausted = errors.New("fallback: no producer succeeded")

// First calls producers in order and returns the first successful result.
// Later producers run only when every earlier one failed. On total failure
// the individual errors are joined so callers can see every cause.
func First[T any](ctx context.Context, producers ...func(context.Context) (T, error)) (T, error) {
	var zero T
	errs := []error{ErrExhausted}
	for _, produce := range producers {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := produce(ctx)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	return zero, errors.Join(errs...)
}
