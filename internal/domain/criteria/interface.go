package criteria

import "context"

// Criterion is one evaluatable node of an achievement criteria tree.
type Criterion interface {
	// Statement returns a human-readable description of the criterion.
	Statement() string

	// Check determines whether the user currently satisfies the
	// criterion.
	Check(ctx context.Context, userID string) (bool, error)
}
