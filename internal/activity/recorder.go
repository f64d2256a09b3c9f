package activity

import (
	"context"
	"fmt"

	"halfnote/internal/dbmysql"

	"gorm.io/gorm"
)

// Recorder is the single choke point through which every socially-visible
// mutation lands in the activity log. Recording is not idempotent: two
// Record calls append two rows. Callers undoing an action (unlike, unpin,
// unfollow) must Retract instead of recording again.
type Recorder struct {
	repo        ActivityRepository
	invalidator *Invalidator
}

func NewRecorder(repo ActivityRepository, invalidator *Invalidator) *Recorder {
	return &Recorder{repo: repo, invalidator: invalidator}
}

// Record validates, appends the activity, then fans out cache invalidation.
// A failed append fails the call; a failed fan-out does not (logged inside
// the invalidator, staleness bounded by TTL).
func (r *Recorder) Record(ctx context.Context, act *dbmysql.Activity) (*dbmysql.Activity, error) {
	if err := Validate(act); err != nil {
		return nil, err
	}
	if err := r.repo.Create(ctx, act); err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}

	r.invalidator.Invalidate(ctx, act.UserID, act.TargetUserID)
	return act, nil
}

// Append validates and writes the activity inside the caller's open
// transaction, so the domain write and the log entry commit or roll back
// together. The caller is responsible for firing FanOut after the
// transaction commits.
func (r *Recorder) Append(tx *gorm.DB, act *dbmysql.Activity) error {
	if err := Validate(act); err != nil {
		return err
	}
	if err := tx.Create(act).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// FanOut triggers the post-commit invalidation for an activity written via
// Append.
func (r *Recorder) FanOut(ctx context.Context, act *dbmysql.Activity) {
	r.invalidator.Invalidate(ctx, act.UserID, act.TargetUserID)
}

// Retract deletes the activity rows matching m and fans out the same
// invalidation a Record would. Returns the number of rows removed; zero is
// not an error (the action may predate activity logging).
func (r *Recorder) Retract(ctx context.Context, m Match) (int64, error) {
	n, err := r.repo.DeleteMatching(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("retract activity: %w", err)
	}

	r.invalidator.Invalidate(ctx, m.ActorID, m.TargetID)
	return n, nil
}

// Invalidator exposes the fan-out for collaborators that manage their own
// activity rows (e.g. follow/unfollow handled in the social service).
func (r *Recorder) Invalidator() *Invalidator {
	return r.invalidator
}
