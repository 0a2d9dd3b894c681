package db

import "testing"

func TestPoolStats_HealthyFlag(t *testing.T) {
	healthy := &PoolStats{TotalConns: 4, IdleConns: 2, AcquiredConns: 2, MaxConns: 10, AcquireCount: 37, Healthy: true}
	if !healthy.Healthy {
		t.Error("expected Healthy to be true")
	}

	drained := &PoolStats{MaxConns: 10}
	if drained.Healthy {
		t.Error("expected Healthy to be false with no connections")
	}
}
