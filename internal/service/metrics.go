package service

import "github.com/prometheus/client_golang/prometheus"

var (
	pointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carvfi_points_awarded_total",
			Help: "Points credited to users, by category",
		},
		[]string{"category"},
	)
	checkIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carvfi_checkins_total",
			Help: "Check-in attempts, by result",
		},
		[]string{"result"},
	)
	chatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carvfi_chat_messages_total",
			Help: "Chat messages, by result",
		},
		[]string{"result"},
	)
	usersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "carvfi_users_created_total",
			Help: "Users created on first wallet contact",
		},
	)
)

func init() {
	prometheus.MustRegister(pointsAwarded, checkIns, chatMessages, usersCreated)
}
