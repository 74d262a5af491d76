package repository

import (
	"database/sql"
	"time"
)

// MySQLStore bundles the table repositories into a Store.
type MySQLStore struct {
	*StudentRepo
	*AdminRepo
	*ReservationRepo
}

// NewMySQLStore builds a Store on db. loc is the lab timezone.
func NewMySQLStore(db *sql.DB, loc *time.Location) *MySQLStore {
	return &MySQLStore{
		StudentRepo:     NewStudentRepo(db, loc),
		AdminRepo:       NewAdminRepo(db),
		ReservationRepo: NewReservationRepo(db, loc),
	}
}

var (
	_ Store = (*MySQLStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
