package driven

import "context"

// ChangeNotifier reports changes to a file.
type ChangeNotifier interface {
	// Watch emits a value each time the file at path is written or replaced.
	// The channel is closed when ctx is done or watching fails.
	Watch(ctx context.Context, path string) (<-chan struct{}, error)
}
