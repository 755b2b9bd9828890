package api

import (
	"time"

	"github.com/2019UGEC100/matching-core/pkg/metrics"
)

type StatsResponse struct {
	metrics.Snapshot
	Instrument string `json:"instrument"`
	Resting    int    `json:"resting_orders"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	UptimeSec int64  `json:"uptime_sec"`
}

// stats returns the process counters and the current book size.
func (s *Server) stats() StatsResponse {
	return StatsResponse{
		Snapshot:   metrics.Get(),
		Instrument: s.engine.Instrument(),
		Resting:    s.engine.Len(),
	}
}

func (s *Server) health() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		UptimeSec: int64(time.Since(s.started).Seconds()),
	}
}
