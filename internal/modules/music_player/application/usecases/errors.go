package usecases

import "errors"

// Errors surfaced to command handlers by the music player module.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrNotInVoice is returned when the invoking user is not in a voice channel.
	ErrNotInVoice = errors.New("you must be in a voice channel")

	// ErrJoinVoiceFailed is returned when connecting or moving to a voice
	// channel fails, including a denied stage speaking request.
	ErrJoinVoiceFailed = errors.New("could not join the voice channel")

	// ErrExtractionFailed is returned when every client profile failed to
	// extract anything; it wraps the last underlying error.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoPlayableFormat is returned when extraction succeeded but no
	// usable audio encoding was found.
	ErrNoPlayableFormat = errors.New("no playable audio format was found")

	// ErrPlaybackStartFailed is reported when the decoder failed to launch;
	// it wraps the underlying launch error.
	ErrPlaybackStartFailed = errors.New("failed to start playback")

	// ErrPlaybackProcessError is reported when a launched decoder terminated
	// abnormally; it wraps the exit diagnostics.
	ErrPlaybackProcessError = errors.New("playback process error")

	// ErrNotPlaying is returned when no track is currently active.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when trying to pause while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")
)
