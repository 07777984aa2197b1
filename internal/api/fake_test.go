package api

import (
	"context"
	"time"

	"github.com/concave-dev/fanout/internal/measure"
	"github.com/concave-dev/fanout/internal/orchestrator"
)

// stubService answers every dispatch with a fixed increase
type stubService struct{}

func (stubService) Execute(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error) {
	return &orchestrator.Response{
		Delta: 1, Before: 1, After: 2,
		TargetID: req.Target, Name: orchestrator.UnknownName,
		Status: measure.Increased, Group: req.Group, Mode: req.Mode.String(), BatchSize: 1,
	}, nil
}

func (stubService) PoolInfo(ctx context.Context) []orchestrator.PoolStatus {
	return []orchestrator.PoolStatus{{Group: "BR", Pool: "br", Dispatch: 1, Measurement: 1}}
}

func (stubService) ReloadPools() bool { return false }

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.BindPort = 8080
	cfg.Version = "test"
	cfg.Service = stubService{}
	return cfg
}

// slowService takes delay to answer a dispatch, like a batch whose calls
// run into their timeouts
type slowService struct {
	stubService
	delay time.Duration
}

func (s slowService) Execute(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error) {
	time.Sleep(s.delay)
	return s.stubService.Execute(ctx, req)
}
