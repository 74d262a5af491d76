// Package repository defines the persistence boundary of the reservation
// service together with its MySQL and in-memory implementations. The
// sentinel errors below are shared by both implementations so the service
// layer can tell expected outcomes apart from infrastructure failures.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist, or for
// status-guarded updates when the row is no longer ACTIVE.
var ErrNotFound = errors.New("not found")

// ErrStudentExists is returned when a student id is already registered.
var ErrStudentExists = errors.New("student already exists")

// ErrAdminExists is returned when an admin username is already taken.
var ErrAdminExists = errors.New("admin already exists")

// ErrDuplicateDaily is returned when inserting a second non-cancelled
// reservation for the same student and day trips the unique key.
var ErrDuplicateDaily = errors.New("student already has a reservation for this day")
