package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(activeSessions, registeredUsers)
}

var (
	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_active",
		Help: "Number of live login sessions.",
	})

	registeredUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "users_registered",
		Help: "Number of registered accounts.",
	})
)

func SetActiveSessions(n int)  { activeSessions.Set(float64(n)) }
func SetRegisteredUsers(n int) { registeredUsers.Set(float64(n)) }
