package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrInvalidOutput      = errors.New("invalid output format, use table, json or yaml")
	ErrNoBaseURL          = errors.New("no base URL configured, use 'petstore config set base_url <url>'")
	ErrConfigDirNotFound  = errors.New("could not determine configuration directory")
	ErrSecretNotPrintable = errors.New("refusing to print secret value")
)

// Command errors.
var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNothingToUpdate    = errors.New("nothing to update, set --name or --status")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUnknownScenario    = errors.New("unknown scenario")
	ErrScenarioAssertion  = errors.New("scenario assertion failed")
	ErrImageFileRequired  = errors.New("image file is required")
	ErrNoUsersToCreate    = errors.New("no users to create")
	ErrQuantityOutOfRange = errors.New("quantity must be positive")
)
