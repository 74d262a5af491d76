package model

import "time"

// Student represents a row of the `users` table. StudentID is the natural
// key students log in with; ID is the surrogate key reservations reference.
//
// Fields:
//  ID           – users.id
//  StudentID    – users.student_id, digits only, unique
//  PasswordHash – bcrypt hash of the student's secret
//  CreatedAt    – registration time
type Student struct {
	ID           uint64    // users.id
	StudentID    string    // users.student_id
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}

// StudentSummary is a roster line shown to administrators.
type StudentSummary struct {
	ID               uint64    `json:"id"`
	StudentID        string    `json:"student_id"`
	CreatedAt        time.Time `json:"created_at"`
	ReservationCount int       `json:"reservation_count"`
}

// Admin is a row of the `admins` table. Admins are a separate principal
// type and never own reservations.
type Admin struct {
	ID           uint64    // admins.id
	Username     string    // admins.username
	PasswordHash string    // admins.password_hash
	CreatedAt    time.Time // admins.created_at
}
