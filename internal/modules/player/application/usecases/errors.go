package usecases

import "errors"

// Domain errors for the player module. All of these are recoverable and
// reported back to the requesting user; none aborts the process.
var (
	// ErrQueueFull is returned when a non-force enqueue would exceed the
	// configured queue limit.
	ErrQueueFull = errors.New("the queue is full")

	// ErrUnsupportedSource is returned when no backend recognizes a URL.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrNoResults is returned when resolution yields no playable track.
	ErrNoResults = errors.New("no results found")

	// ErrDurationLimit is returned when a track exceeds the duration cap.
	ErrDurationLimit = errors.New("track exceeds the duration limit")

	// ErrNotAuthorized is returned when the requester lacks permission.
	ErrNotAuthorized = errors.New("you are not authorized to do that")

	// ErrAssistantBanned is returned when the assistant is banned in the
	// chat and the restriction could not be lifted.
	ErrAssistantBanned = errors.New("assistant is banned in this chat")

	// ErrInviteUnavailable is returned when no invite could be exported or
	// resolved for the assistant to join through.
	ErrInviteUnavailable = errors.New("could not resolve an invite link")

	// ErrJoinFailed is returned when the assistant could not enter the chat.
	ErrJoinFailed = errors.New("assistant failed to join the chat")

	// ErrNoActiveCall is returned for playback controls when no call exists.
	ErrNoActiveCall = errors.New("no active voice call in this chat")

	// ErrNoFile is returned when the track's media could not be downloaded.
	ErrNoFile = errors.New("failed to obtain a media file")
)
