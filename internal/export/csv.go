// Package export renders the collaborator-facing tabular surfaces: a CSV of
// session history per department and a roster CSV per session.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"attendancehub/internal/attendance"
	"attendancehub/internal/session"
)

// WriteSessionHistory writes one row per session: date, course code, pin,
// Active/Closed.
func WriteSessionHistory(w io.Writer, sessions []session.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Course Code", "PIN", "Status"}); err != nil {
		return err
	}
	for _, s := range sessions {
		status := "Closed"
		if s.IsActive {
			status = "Active"
		}
		if err := cw.Write([]string{
			s.CreatedAt.Format("2006-01-02"),
			s.CourseCode,
			s.UniqueCode,
			status,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRoster writes one row per attendance entry with the signer's
// identity. The signature column carries the opaque image data URL.
func WriteRoster(w io.Writer, roster []attendance.RosterEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"#", "Full Name", "Matric No", "Time Signed", "Signature"}); err != nil {
		return err
	}
	for i, e := range roster {
		if err := cw.Write([]string{
			strconv.Itoa(i + 1),
			e.FullName,
			e.MatricNo,
			e.SignedAt.Format("15:04"),
			e.Signature,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
