package main

import (
	"errors"
	"regexp"
)

var (
	errInvalidFormat = errors.New("invalid name")
	errAlreadyTaken  = errors.New("name already taken")
	errAlreadyExists = errors.New("room already exists")
	errNotFound      = errors.New("room not found")
	errNoName        = errors.New("no name claimed")
	errNotJoined     = errors.New("not joined")
)

// Display names and room names share one format.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validName(name string) bool {
	return namePattern.MatchString(name)
}
