package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"attendancehub/internal/store"
)

// Repository persists profiles in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const profileColumns = `id, created_at, full_name, matric_no, level, department, role, signature`

// Create inserts a new profile. The matric number must be unused.
func (r *Repository) Create(ctx context.Context, p Profile, password string) (Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Level == "" {
		p.Level = "100"
	}
	if p.Role == "" {
		p.Role = RoleStudent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, full_name, matric_no, level, department, role, signature, password)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, p.ID, p.FullName, p.MatricNo, p.Level, p.Department, p.Role, p.Signature, password)
	if err := row.Scan(&p.CreatedAt); err != nil {
		if store.PgCode(err) == store.CodeUniqueViolation {
			return Profile{}, ErrMatricTaken
		}
		return Profile{}, store.Classify(err)
	}
	return p, nil
}

// GetByID returns a single profile.
func (r *Repository) GetByID(ctx context.Context, id string) (Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// GetByCredentials looks a profile up by matric number and password.
func (r *Repository) GetByCredentials(ctx context.Context, matricNo, password string) (Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE matric_no = $1 AND password = $2
	`, matricNo, password)
	p, err := scanProfile(row)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrBadCredentials
	}
	return p, err
}

// ListStudentsByDepartment returns the department registry ordered by matric number.
func (r *Repository) ListStudentsByDepartment(ctx context.Context, department string) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE department = $1 AND role = $2
		ORDER BY matric_no
	`, department, RoleStudent)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.FullName, &p.MatricNo, &p.Level, &p.Department, &p.Role, &p.Signature); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, store.Classify(rows.Err())
}

// UpdateLevel changes the self-service level field.
func (r *Repository) UpdateLevel(ctx context.Context, id, level string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET level = $2 WHERE id = $1`, id, level)
	if err != nil {
		return store.Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.CreatedAt, &p.FullName, &p.MatricNo, &p.Level, &p.Department, &p.Role, &p.Signature)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, store.Classify(err)
	}
	return p, nil
}
