package worker

import (
	"context"
	"log/slog"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// KeepAlive pings the classifier on a fixed interval so a free-tier host
// does not fall asleep between sessions.
type KeepAlive struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewKeepAlive(pinger Pinger, interval time.Duration, logger *slog.Logger) *KeepAlive {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := 30 * time.Second
	if interval > 0 && interval < timeout {
		timeout = interval
	}
	return &KeepAlive{pinger: pinger, interval: interval, timeout: timeout, logger: logger}
}

// Run pings once at startup, then on every interval until ctx is cancelled.
// A non-positive interval disables it.
func (k *KeepAlive) Run(ctx context.Context) error {
	if k.interval <= 0 {
		k.logger.Info("classifier keep-alive disabled")
		return nil
	}

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	k.logger.Info("classifier keep-alive started", slog.Duration("interval", k.interval))
	k.ping(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			k.ping(ctx)
		}
	}
}

func (k *KeepAlive) ping(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := k.pinger.Ping(ctx); err != nil {
		k.logger.Warn("classifier keep-alive ping failed", slog.String("error", err.Error()))
		return
	}
	k.logger.Debug("classifier keep-alive ping ok")
}
