package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// TokenPurger deletes revoked-token rows whose expiry has passed.
type TokenPurger interface {
	PurgeRevoked(ctx context.Context) (int64, error)
}

// PurgeRevokedTokensTask removes expired entries from the revocation list.
// Tokens past their expiry are rejected by signature checks anyway, so the
// rows only cost space.
type PurgeRevokedTokensTask struct {
	Reason string `json:"reason,omitempty"` // shown in the log line
}

func (t PurgeRevokedTokensTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_revoked_tokens",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeRevokedTokensProcessor runs the purge. observe, when non-nil,
// receives the number of deleted rows.
func PurgeRevokedTokensProcessor(purger TokenPurger, observe func(int64)) backlite.QueueProcessor[PurgeRevokedTokensTask] {
	return func(ctx context.Context, task PurgeRevokedTokensTask) error {
		if purger == nil {
			return fmt.Errorf("token purger not configured")
		}

		deleted, err := purger.PurgeRevoked(ctx)
		if err != nil {
			return fmt.Errorf("purge revoked tokens: %w", err)
		}
		if observe != nil {
			observe(deleted)
		}

		log.Printf("Task queue: purged %d expired revoked tokens (%s)", deleted, task.Reason)
		return nil
	}
}

func NewPurgeRevokedTokensQueue(purger TokenPurger, observe func(int64)) backlite.Queue {
	return backlite.NewQueue(PurgeRevokedTokensProcessor(purger, observe))
}
