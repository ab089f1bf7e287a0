package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmorrow/larder/internal/repository"
)

// TokenPruner periodically sweeps registered device tokens, probing
// each against the push gateway and removing the ones reported as
// permanently invalid, plus any token not seen for the stale window.
type TokenPruner struct {
	deviceTokenRepo repository.DeviceTokenRepository
	sender          PushSender
	interval        time.Duration
	staleAge        time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewTokenPruner(
	deviceTokenRepo repository.DeviceTokenRepository,
	sender PushSender,
	interval time.Duration,
	staleAge time.Duration,
) *TokenPruner {
	return &TokenPruner{
		deviceTokenRepo: deviceTokenRepo,
		sender:          sender,
		interval:        interval,
		staleAge:        staleAge,
		stopCh:          make(chan struct{}),
	}
}

func (pruner *TokenPruner) Start() {
	go pruner.run()
}

func (pruner *TokenPruner) Stop() {
	pruner.stopOnce.Do(func() {
		close(pruner.stopCh)
	})
}

func (pruner *TokenPruner) run() {
	ticker := time.NewTicker(pruner.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := pruner.RunOnce(ctx); err != nil {
				slog.Error("token prune sweep failed", "error", err)
			}
			cancel()
		case <-pruner.stopCh:
			return
		}
	}
}

// RunOnce performs one validity sweep over all stored tokens.
func (pruner *TokenPruner) RunOnce(ctx context.Context) error {
	stale, err := pruner.deviceTokenRepo.DeleteStale(ctx, time.Now().Add(-pruner.staleAge))
	if err != nil {
		return err
	}

	tokens, err := pruner.deviceTokenRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	invalid := 0
	for _, token := range tokens {
		err := pruner.sender.Probe(ctx, token.Token)
		if errors.Is(err, ErrTokenInvalid) {
			if err := pruner.deviceTokenRepo.Delete(ctx, token.Token); err != nil {
				slog.Warn("removing invalid token", "error", err)
				continue
			}
			invalid++
			continue
		}
		if err != nil {
			// Transient gateway failures leave the token in place.
			slog.Warn("probing device token", "error", err)
		}
	}

	if stale > 0 || invalid > 0 {
		slog.Info("pruned device tokens", "stale", stale, "invalid", invalid)
	}
	return nil
}
