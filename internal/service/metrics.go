package service

import "github.com/prometheus/client_golang/prometheus"

var (
	// GamesStarted counts games begun, labeled by mode (shared or solo).
	GamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_started_total",
			Help: "Total number of games started",
		},
		[]string{"mode"},
	)

	// GamesFinished counts games ended, labeled by mode and result.
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_finished_total",
			Help: "Total number of games finished",
		},
		[]string{"mode", "result"},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(GamesFinished)
}
