package main

// Exit codes shared by every command
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, API or runtime failure)
	ExitConfigError = 2 // Configuration error (missing server URL, token, or API key)
	ExitDataError   = 3 // Data error (no snapshot, malformed input file)
)
