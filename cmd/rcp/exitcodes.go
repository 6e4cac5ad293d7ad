package main

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (bad config file, invalid values)
	ExitAPIError      = 3 // API error (rate limit, network, Ollama not running)
	ExitAuthError     = 4 // Missing or rejected Edamam credentials
	ExitModelNotFound = 5 // Embedding model not found
)
