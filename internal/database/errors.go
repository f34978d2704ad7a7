package database

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrServiceInactive is returned when a booking names a service that
	// exists but is switched off in the catalog.
	ErrServiceInactive = errors.New("service is not active")

	// ErrConcurrentModification is returned when a versioned update loses
	// the race to another writer.
	ErrConcurrentModification = errors.New("record was modified concurrently")

	// ErrInsufficientStock is returned when a stock adjustment would drive
	// an inventory count below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)
