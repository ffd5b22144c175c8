package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgCode(t *testing.T) {
	assert.Equal(t, "23505", PgCode(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, "23505", PgCode(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.Equal(t, "", PgCode(errors.New("not a pg error")))
	assert.Equal(t, "", PgCode(nil))
}

func TestClassifyConnectivityFailures(t *testing.T) {
	refused := &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: errors.New("connect: connection refused"),
	}
	cases := []struct {
		name string
		err  error
	}{
		{"dial refused", refused},
		{"wrapped dial refused", fmt.Errorf("query session: %w", refused)},
		{"bad conn", driver.ErrBadConn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			assert.ErrorIs(t, got, ErrUnavailable)
		})
	}
}

func TestClassifyPassesDomainErrorsThrough(t *testing.T) {
	assert.NoError(t, Classify(nil))

	got := Classify(sql.ErrNoRows)
	assert.ErrorIs(t, got, sql.ErrNoRows)
	assert.NotErrorIs(t, got, ErrUnavailable)

	pgErr := &pgconn.PgError{Code: CodeUniqueViolation}
	assert.NotErrorIs(t, Classify(pgErr), ErrUnavailable)
}
