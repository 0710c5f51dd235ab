package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "carvfi_ws_connections",
		Help: "Open live feed websocket connections",
	})
	droppedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carvfi_ws_dropped_messages_total",
		Help: "Messages dropped because a client send buffer was full",
	})
)

func init() {
	prometheus.MustRegister(connectedClients, droppedMessages)
}
