// Package metrics exposes the server's prometheus collectors. Everything
// registers against the default registry so the /metrics route only needs
// promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MarketTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stocksim_market_ticks_total",
		Help: "Market ticks stepped across all rooms",
	})

	SharesTraded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stocksim_shares_traded_total",
		Help: "Shares matched across all rooms",
	})

	ValueTraded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stocksim_value_traded_cents_total",
		Help: "Notional value matched across all rooms, in cents",
	})

	NewsFired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stocksim_news_fired_total",
		Help: "News items fired, random and injected",
	})

	PowersConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stocksim_powers_consumed_total",
		Help: "Powers consumed by players",
	})

	OpenRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stocksim_open_rooms",
		Help: "Rooms currently alive",
	})

	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stocksim_connected_clients",
		Help: "Websocket clients currently connected",
	})
)

func init() {
	prometheus.MustRegister(
		MarketTicks,
		SharesTraded,
		ValueTraded,
		NewsFired,
		PowersConsumed,
		OpenRooms,
		ConnectedClients,
	)
}
