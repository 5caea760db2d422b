// Package bookmark keeps bookmark membership consistent with the server:
// every change is a server call first, and the session counter is refreshed after it.
package bookmark

// Actions reported in BookmarkError.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionList   = "list"
)

// Fallback messages used when the server did not say what went wrong.
const (
	msgAddFailed    = "Failed to add bookmark"
	msgRemoveFailed = "Failed to remove bookmark"
	msgListFailed   = "Failed to fetch bookmarks"
)

// BookmarkError is a failed bookmark operation. Message is the server's
// message when it sent one, otherwise a generic fallback.
type BookmarkError struct {
	Action  string
	Message string
	Err     error
}

func (e *BookmarkError) Error() string {
	return e.Message
}

func (e *BookmarkError) Unwrap() error {
	return e.Err
}
