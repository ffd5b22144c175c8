package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendancehub/internal/attendance"
	"attendancehub/internal/session"
)

func TestWriteSessionHistory(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		{CourseCode: "EEC201", UniqueCode: "483920", CreatedAt: created, IsActive: true},
		{CourseCode: "EEC305", UniqueCode: "000417", CreatedAt: created, IsActive: false},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSessionHistory(&buf, sessions))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Course Code,PIN,Status", lines[0])
	assert.Equal(t, "2026-03-14,EEC201,483920,Active", lines[1])
	assert.Equal(t, "2026-03-14,EEC305,000417,Closed", lines[2])
}

func TestWriteRoster(t *testing.T) {
	signed := time.Date(2026, 3, 14, 9, 42, 0, 0, time.UTC)
	roster := []attendance.RosterEntry{
		{
			Entry:    attendance.Entry{SignedAt: signed},
			FullName: "Bola Musa",
			MatricNo: "EEE/21/040",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRoster(&buf, roster))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "#,Full Name,Matric No,Time Signed,Signature", lines[0])
	assert.Equal(t, "1,Bola Musa,EEE/21/040,09:42,", lines[1])
}
