package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

type studentRow struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	FullName     null.String `db:"full_name"`
	IsAdmin      bool        `db:"is_admin"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) row(std student.Student) studentRow {
	return studentRow{
		ID:           std.ID,
		Email:        std.Email,
		FullName:     std.FullName,
		IsAdmin:      std.IsAdmin,
		PasswordHash: std.PasswordHash,
		CreatedAt:    std.CreatedAt.UTC(),
		UpdatedAt:    std.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) unrow(row studentRow) student.Student {
	return student.Student{
		ID:           row.ID,
		Email:        row.Email,
		FullName:     row.FullName,
		IsAdmin:      row.IsAdmin,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo studentRepository) unrowSlice(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unrow(row))
	}
	return students
}

func (repo studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...student.Student) error {
	query := `SELECT EXISTS (SELECT 1 FROM students WHERE email = ?)`
	args := []interface{}{email}
	if len(excludedStudents) > 0 {
		ids := make([]string, 0, len(excludedStudents))
		for _, std := range excludedStudents {
			ids = append(ids, std.ID)
		}
		var err error
		query, args, err = sqlx.In(`SELECT EXISTS (SELECT 1 FROM students WHERE email = ? AND id NOT IN (?))`, email, ids)
		if err != nil {
			return errors.Wrap(err, "expanding excluded ids")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking student uniqueness")
	}
	if exists {
		return student.ErrEmailExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	row := repo.row(std)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO students (id, email, full_name, is_admin, password_hash, created_at, updated_at)
		VALUES (:id, :email, :full_name, :is_admin, :password_hash, :created_at, :updated_at)`, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.unrow(row), nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context, ordering ...core.DBOrdering) ([]student.Student, error) {
	var rows []studentRow
	query := `SELECT * FROM students` + orderBy(ordering, "created_at DESC")
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return repo.unrowSlice(rows), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM students WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student by id")
	}
	return repo.unrow(row), nil
}

func (repo studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM students WHERE email = $1`, email); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student by email")
	}
	return repo.unrow(row), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	row := repo.row(std)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE students
		SET email = :email, full_name = :full_name, is_admin = :is_admin,
		    password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo studentRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return count, nil
}
