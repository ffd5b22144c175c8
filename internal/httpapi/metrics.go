package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkinAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendancehub_checkin_attempts_total",
		Help: "Check-in submissions by outcome.",
	}, []string{"outcome"})

	sessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendancehub_sessions_opened_total",
		Help: "Attendance sessions opened.",
	})
)
