package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// StudentRepo mirrors the 'users' table.
type StudentRepo struct {
	DB  *sql.DB
	loc *time.Location
}

func NewStudentRepo(db *sql.DB, loc *time.Location) *StudentRepo {
	return &StudentRepo{DB: db, loc: loc}
}

// CreateStudent inserts a student and returns the stored row.
func (r *StudentRepo) CreateStudent(ctx context.Context, studentID, passwordHash string) (*model.Student, error) {
	studentID = strings.TrimSpace(studentID)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (student_id, password_hash) VALUES (?,?)",
		studentID, passwordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrStudentExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindStudentByID(ctx, uint64(id))
}

// FindStudentByStudentID fetches a student by natural id.
func (r *StudentRepo) FindStudentByStudentID(ctx context.Context, studentID string) (*model.Student, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,student_id,password_hash,created_at FROM users WHERE student_id=? LIMIT 1",
		strings.TrimSpace(studentID)))
}

// FindStudentByID fetches a student by surrogate id.
func (r *StudentRepo) FindStudentByID(ctx context.Context, id uint64) (*model.Student, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,student_id,password_hash,created_at FROM users WHERE id=? LIMIT 1", id))
}

// ListStudents returns all students, newest first, with how many
// reservations each has ever made.
func (r *StudentRepo) ListStudents(ctx context.Context) ([]model.StudentSummary, error) {
	const q = `SELECT u.id, u.student_id, u.created_at, COUNT(rv.id)
               FROM users u
               LEFT JOIN reservations rv ON rv.user_id = u.id
               GROUP BY u.id, u.student_id, u.created_at
               ORDER BY u.created_at DESC, u.id DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.StudentSummary{}
	for rows.Next() {
		var s model.StudentSummary
		if err := rows.Scan(&s.ID, &s.StudentID, &s.CreatedAt, &s.ReservationCount); err != nil {
			return nil, err
		}
		s.CreatedAt = s.CreatedAt.In(r.loc)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StudentRepo) scanOne(row *sql.Row) (*model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.StudentID, &s.PasswordHash, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.In(r.loc)
	return &s, nil
}
