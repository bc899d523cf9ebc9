package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Parse errors
	ErrUnknownFormat = fmt.Errorf("unknown playlist format")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrEmptyContent  = fmt.Errorf("empty content")

	// Matching and search errors
	ErrSearchFailed      = fmt.Errorf("search request failed")
	ErrUnknownSearcher   = fmt.Errorf("unknown searcher platform")
	ErrSearchUnavailable = fmt.Errorf("searcher unavailable")

	// Job and playlist errors
	ErrJobNotFound       = fmt.Errorf("import job not found")
	ErrJobNotConfirmable = fmt.Errorf("import job cannot be confirmed")
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
	ErrDuplicatePlaylist = fmt.Errorf("playlist name already exists")

	// CLI argument errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
