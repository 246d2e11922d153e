package main

import (
	"errors"

	"raildispatch.dev/core/model"
	"raildispatch.dev/core/solve"
	"raildispatch.dev/core/storage"
)

// exitCodeFor maps the error taxonomy a Runner.Run call can surface to
// a process exit code, standing in for the HTTP status mapping a real
// dispatch service would use.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var invalid *model.InvalidInputError
	var persistErr *storage.PersistenceError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return 2
	case errors.As(err, &invalid):
		return 3
	case errors.Is(err, solve.ErrNoFeasibleSolution):
		return 4
	case errors.As(err, &persistErr):
		return 5
	default:
		return 1
	}
}
