package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quotebook/quotebook/internal/billing"
)

// State is the lifecycle stage of an export task.
type State string

const (
	StatePending State = "pending"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Status is the observable progress of one export.
type Status struct {
	TaskID    string    `json:"task_id"`
	Kind      string    `json:"kind"`
	Number    string    `json:"number"`
	Format    Format    `json:"format"`
	State     State     `json:"state"`
	File      string    `json:"file,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

const keyPrefix = "quotebook:export:"

// StatusStore keeps export statuses in Redis. Completion is recorded at most
// once per task, whichever of done or failed comes first.
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewStatusStore constructs a store whose entries expire after ttl.
func NewStatusStore(client *redis.Client, ttl time.Duration) *StatusStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StatusStore{client: client, ttl: ttl, now: time.Now}
}

func statusKey(taskID string) string { return keyPrefix + "status:" + taskID }
func finalKey(taskID string) string  { return keyPrefix + "final:" + taskID }

// Pending records a freshly enqueued export.
func (s *StatusStore) Pending(ctx context.Context, st Status) error {
	st.State = StatePending
	return s.put(ctx, st)
}

// Complete marks the export done. It reports false when the task had already
// been finalised and leaves the stored status as it was.
func (s *StatusStore) Complete(ctx context.Context, taskID, file string) (bool, error) {
	return s.finish(ctx, taskID, func(st *Status) {
		st.State = StateDone
		st.File = file
	})
}

// Fail marks the export failed with the reason, subject to the same
// once-only rule as Complete.
func (s *StatusStore) Fail(ctx context.Context, taskID string, cause error) (bool, error) {
	return s.finish(ctx, taskID, func(st *Status) {
		st.State = StateFailed
		st.Error = cause.Error()
	})
}

func (s *StatusStore) finish(ctx context.Context, taskID string, apply func(*Status)) (bool, error) {
	first, err := s.client.SetNX(ctx, finalKey(taskID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("export status: claim %s: %w", taskID, err)
	}
	if !first {
		return false, nil
	}
	st, err := s.Get(ctx, taskID)
	if err != nil && !errors.Is(err, billing.ErrNotFound) {
		return false, err
	}
	st.TaskID = taskID
	apply(&st)
	if err := s.put(ctx, st); err != nil {
		return false, err
	}
	return true, nil
}

// Get loads the status of taskID.
func (s *StatusStore) Get(ctx context.Context, taskID string) (Status, error) {
	raw, err := s.client.Get(ctx, statusKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Status{}, fmt.Errorf("export %s: %w", taskID, billing.ErrNotFound)
	}
	if err != nil {
		return Status{}, fmt.Errorf("export status: get %s: %w", taskID, err)
	}
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return Status{}, fmt.Errorf("export status: decode %s: %w", taskID, err)
	}
	return st, nil
}

func (s *StatusStore) put(ctx context.Context, st Status) error {
	st.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, statusKey(st.TaskID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("export status: put %s: %w", st.TaskID, err)
	}
	return nil
}
