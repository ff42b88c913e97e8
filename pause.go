package cppq

import "context"

// Pause suppresses a queue from dispatch by adding it to the pause set.
func Pause(ctx context.Context, s Store, queue string) error {
	if err := s.SAdd(ctx, pausedKey, queue).Err(); err != nil {
		return &StoreError{Op: "pause", Err: err}
	}
	return nil
}

// Unpause removes a queue from the pause set, re-enabling dispatch.
func Unpause(ctx context.Context, s Store, queue string) error {
	if err := s.SRem(ctx, pausedKey, queue).Err(); err != nil {
		return &StoreError{Op: "unpause", Err: err}
	}
	return nil
}

// IsPaused reports whether a queue is currently suppressed. Implemented with
// SISMEMBER rather than the reference's SMEMBERS-plus-scan, per spec §4.8's
// own note that this is equivalent and preferable.
func IsPaused(ctx context.Context, s Store, queue string) (bool, error) {
	ok, err := s.SIsMember(ctx, pausedKey, queue).Result()
	if err != nil {
		return false, &StoreError{Op: "check pause", Err: err}
	}
	return ok, nil
}
