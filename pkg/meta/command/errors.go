// Package command holds the web and desktop command catalogs.
package command

import "errors"

var (
	// ErrCatalogFrozen is returned by every mutation of a frozen web catalog.
	ErrCatalogFrozen = errors.New("command catalog is frozen")

	// ErrDuplicateCommand is returned when a command name is already taken.
	ErrDuplicateCommand = errors.New("duplicate command")

	// ErrInvalidCommand is returned for commands without a name.
	ErrInvalidCommand = errors.New("invalid command")
)
