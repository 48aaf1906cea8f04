package notifyservice

import (
	"log/slog"
)

func NewService(broker Broker, worker WorkerRunner, logger Logger) *Service {
	return &Service{
		broker: broker,
		worker: worker,
		logger: logger,
	}
}

// Initialize connects the queue client and starts the dispatch worker.
// Idempotent. The notification subsystem is best-effort relative to the core
// API: a failure here is logged and swallowed so the host process keeps
// serving requests without notifications.
func (s *Service) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		s.logger.Info("notification service already initialized")
		return
	}

	if err := s.broker.Connect(); err != nil {
		s.logger.Error("could not connect notification queue", slog.String("error", err.Error()))
		return
	}

	if err := s.worker.Start(); err != nil {
		s.logger.Error("could not start notification worker", slog.String("error", err.Error()))
		return
	}

	s.initialized = true
	s.logger.Info("notification service initialized")
}

// Shutdown stops the worker then disconnects the queue client. Idempotent and
// safe to call when Initialize never succeeded.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}

	s.worker.Stop()

	if err := s.broker.Close(); err != nil {
		s.logger.Error("could not close notification queue", slog.String("error", err.Error()))
	}

	s.initialized = false
	s.logger.Info("notification service shut down")
}

func (s *Service) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}
