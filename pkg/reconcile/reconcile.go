// Package reconcile drives a single resource towards its desired state in one
// pass: look it up, then create, update, delete or leave it alone.
package reconcile

import (
	"context"
	"fmt"
)

type State string

const (
	Present State = "present"
	Absent  State = "absent"
	// Disabled is a variant of Present whose payload marks the object disabled.
	Disabled State = "disabled"
)

type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Adapter maps one resource type onto its remote API. Lookup returns nil, nil
// when the resource does not exist.
type Adapter[T any] interface {
	Lookup(ctx context.Context) (*T, error)
	Create(ctx context.Context) (*T, error)
	Diff(observed *T) Diff
	Update(ctx context.Context, observed *T, diff Diff) (*T, error)
	Delete(ctx context.Context, observed *T) error
}

type Outcome[T any] struct {
	Action  Action
	Changed bool
	// Object is the created, updated or observed resource. On delete it is
	// the object as it was before removal; when nothing existed it is nil.
	Object *T
	Diff   Diff
}

// Reconcile runs lookup plus at most one mutating call. There is no retry and
// no polling; errors from the adapter are returned as they are.
func Reconcile[T any](ctx context.Context, state State, a Adapter[T]) (Outcome[T], error) {
	observed, err := a.Lookup(ctx)
	if err != nil {
		return Outcome[T]{}, err
	}

	switch state {
	case Absent:
		if observed == nil {
			return Outcome[T]{Action: ActionNone}, nil
		}
		if err := a.Delete(ctx, observed); err != nil {
			return Outcome[T]{}, err
		}
		return Outcome[T]{Action: ActionDelete, Changed: true, Object: observed}, nil

	case Present, Disabled:
		if observed == nil {
			created, err := a.Create(ctx)
			if err != nil {
				return Outcome[T]{}, err
			}
			return Outcome[T]{Action: ActionCreate, Changed: true, Object: created}, nil
		}
		diff := a.Diff(observed)
		if diff.Empty() {
			return Outcome[T]{Action: ActionNone, Object: observed}, nil
		}
		updated, err := a.Update(ctx, observed, diff)
		if err != nil {
			return Outcome[T]{}, err
		}
		return Outcome[T]{Action: ActionUpdate, Changed: true, Object: updated, Diff: diff}, nil
	}

	return Outcome[T]{}, fmt.Errorf("unsupported state %q", state)
}
