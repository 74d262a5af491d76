package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
)

// Roster credential rules.
const (
	MinPasswordLength = 4
	MinUsernameLength = 3
	MaxStudentIDLen   = 32
)

// Hasher produces the stored form of a secret.
type Hasher interface {
	Hash(plain string) (string, error)
}

// StudentService manages the roster of students allowed to reserve.
type StudentService interface {
	// Register is the self-service signup.
	Register(ctx context.Context, studentID, password string) (*model.Student, error)
	// AddStudent is the admin-side equivalent of Register.
	AddStudent(ctx context.Context, studentID, password string) (*model.Student, error)
	ListStudents(ctx context.Context) ([]model.StudentSummary, error)
	// DeleteStudent refuses while the student holds an ACTIVE reservation;
	// otherwise the student and the reservation history are removed.
	DeleteStudent(ctx context.Context, userID uint64) error
}

type studentService struct {
	store  repository.Store
	hasher Hasher
	log    *logger.Logger
}

func NewStudentService(store repository.Store, hasher Hasher, log *logger.Logger) StudentService {
	if log == nil {
		log = logger.Discard()
	}
	return &studentService{store: store, hasher: hasher, log: log}
}

// ValidStudentID reports whether id is a non-empty string of ASCII digits.
func ValidStudentID(id string) bool {
	if id == "" || len(id) > MaxStudentIDLen {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *studentService) Register(ctx context.Context, studentID, password string) (*model.Student, error) {
	st, err := s.create(ctx, studentID, password)
	if err == nil {
		s.log.Info("student registered", "student_id", st.StudentID)
	}
	return st, err
}

func (s *studentService) AddStudent(ctx context.Context, studentID, password string) (*model.Student, error) {
	st, err := s.create(ctx, studentID, password)
	if err == nil {
		s.log.Info("student added by admin", "student_id", st.StudentID)
	}
	return st, err
}

func (s *studentService) create(ctx context.Context, studentID, password string) (*model.Student, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" || password == "" {
		return nil, &Error{Kind: KindInvalidInput, Message: "student id and password are required"}
	}
	if !ValidStudentID(studentID) {
		return nil, &Error{Kind: KindInvalidInput, Message: "student id must contain digits only"}
	}
	if len(password) < MinPasswordLength {
		return nil, &Error{Kind: KindInvalidInput, Message: "password must be at least 4 characters"}
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("hash password failed", "error", err)
		return nil, internal(err)
	}
	st, err := s.store.CreateStudent(ctx, studentID, hash)
	if errors.Is(err, repository.ErrStudentExists) {
		return nil, ErrStudentExists
	}
	if err != nil {
		s.log.Error("create student failed", "error", err)
		return nil, internal(err)
	}
	return st, nil
}

func (s *studentService) ListStudents(ctx context.Context) ([]model.StudentSummary, error) {
	list, err := s.store.ListStudents(ctx)
	if err != nil {
		s.log.Error("list students failed", "error", err)
		return nil, internal(err)
	}
	return list, nil
}

func (s *studentService) DeleteStudent(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	var studentID string
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockStudent(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		active, err := tx.FindActiveByUser(ctx, userID)
		switch {
		case err == nil:
			studentID = active.StudentID
			return ErrActiveReservationExists
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		if err := tx.DeleteStudent(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return nil
	})
	var se *Error
	switch {
	case err == nil:
		s.log.Info("student deleted", "user_id", userID)
		return nil
	case errors.As(err, &se):
		if se.Kind == KindActiveReservationExists {
			s.log.Info("student delete refused", "user_id", userID, "student_id", studentID)
		}
		return se
	default:
		s.log.Error("delete student failed", "user_id", userID, "error", err)
		return internal(err)
	}
}
