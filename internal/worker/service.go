package worker

import (
	"context"
	"errors"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultSweepInterval = time.Minute

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	sweepInterval := defaultSweepInterval
	if cfg.Tab.ClaimSweepIntervalSecs > 0 {
		sweepInterval = time.Duration(cfg.Tab.ClaimSweepIntervalSecs) * time.Second
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: sweepInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.ClaimService != nil {
		go s.runClaimSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// SweepService 仅运行过期认领清扫的降级服务，队列未启用时使用
type SweepService struct {
	consumer      *Consumer
	sweepInterval time.Duration
	cancel        context.CancelFunc
}

// NewSweepService 创建清扫服务
func NewSweepService(cfg *config.Config, consumer *Consumer) (*SweepService, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	sweepInterval := defaultSweepInterval
	if cfg != nil && cfg.Tab.ClaimSweepIntervalSecs > 0 {
		sweepInterval = time.Duration(cfg.Tab.ClaimSweepIntervalSecs) * time.Second
	}
	return &SweepService{
		consumer:      consumer,
		sweepInterval: sweepInterval,
	}, nil
}

// Name 服务名称
func (s *SweepService) Name() string {
	return "claim-sweeper"
}

// Start 启动服务，阻塞直到 ctx 结束
func (s *SweepService) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil || s.consumer.ClaimService == nil {
		return errors.New("sweeper not initialized")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	runOnce := func() {
		if _, err := s.consumer.ClaimService.SweepExpired(ctx); err != nil {
			logger.Warnw("worker_claim_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			runOnce()
		}
	}
}

// Stop 停止服务
func (s *SweepService) Stop(ctx context.Context) error {
	if s == nil || s.cancel == nil {
		return nil
	}
	s.cancel()
	return nil
}

// runClaimSweepLoop 周期回收过期认领
// 查询侧已做惰性过滤，清扫只负责把过期事实落库并广播
func (s *Service) runClaimSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ClaimService == nil {
		return
	}
	runOnce := func() {
		if _, err := s.consumer.ClaimService.SweepExpired(ctx); err != nil {
			logger.Warnw("worker_claim_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
