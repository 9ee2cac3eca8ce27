package types

import "errors"

var (
	// ErrMissingConfiguration is returned when the credential file lacks a required key
	ErrMissingConfiguration = errors.New("missing configuration parameters")

	// ErrNotGitRepository is returned when no git repository contains the working directory
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrNotFound is returned when Jenkins has no such job or the job never completed a build
	ErrNotFound = errors.New("not found")
)
