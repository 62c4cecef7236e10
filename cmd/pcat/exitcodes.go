package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid import config, unknown venue)
	ExitDataError   = 3 // Data error (a document group could not be imported)
)
