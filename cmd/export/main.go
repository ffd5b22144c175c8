package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"attendancehub/internal/attendance"
	"attendancehub/internal/config"
	"attendancehub/internal/export"
	"attendancehub/internal/session"
	"attendancehub/internal/store"
)

// Export writes the CSV surfaces straight from the store: a department's
// session history, or one session's signed roster.
func main() {
	department := flag.String("department", "", "export session history for this department")
	sessionID := flag.String("session", "", "export the roster for this session id")
	out := flag.String("out", "", "output file (default: derived name in the working directory)")
	flag.Parse()

	if (*department == "") == (*sessionID == "") {
		log.Fatal("pass exactly one of -department or -session")
	}

	cfg := config.Load()
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var path string
	if *department != "" {
		path, err = exportHistory(ctx, db, *department, *out)
	} else {
		path, err = exportRoster(ctx, db, *sessionID, *out)
	}
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
	log.Printf("wrote %s", path)
}

func exportHistory(ctx context.Context, db *store.DB, department, out string) (string, error) {
	sessions := session.NewRepository(db.Client, nil)
	list, err := sessions.ListByDepartment(ctx, department)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = fmt.Sprintf("Session_History_%s_%s.csv", department, time.Now().Format("2006-01-02"))
	}
	return out, writeFile(out, func(f *os.File) error {
		return export.WriteSessionHistory(f, list)
	})
}

func exportRoster(ctx context.Context, db *store.DB, sessionID, out string) (string, error) {
	sessions := session.NewRepository(db.Client, nil)
	ledger := attendance.NewRepository(db.Client, nil)

	s, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	roster, err := ledger.ListBySession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = s.CourseCode + "_Attendance_Registry.csv"
	}
	return out, writeFile(out, func(f *os.File) error {
		return export.WriteRoster(f, roster)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
