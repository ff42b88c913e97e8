package cppq

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// scheduledScript selects the oldest-inserted scheduled task in a queue
// whose `schedule` field is due, or returns an empty string if none is due.
//
// The reference implementation compares the server's current time
// (seconds concatenated with microseconds) against `schedule` as strings,
// which is not monotone across a microsecond rollover. This version instead
// computes now in integer milliseconds from TIME and compares numerically
// against `schedule`, which is stored in the same unit.
var scheduledScript = redis.NewScript(`
local time = redis.call('TIME')
local nowMs = tonumber(time[1]) * 1000 + math.floor(tonumber(time[2]) / 1000)
local scheduled = redis.call('LRANGE', KEYS[1], 0, -1)
for i = #scheduled, 1, -1 do
  local id = scheduled[i]
  local due = redis.call('HGET', 'cppq:' .. ARGV[1] .. ':task:' .. id, 'schedule')
  if due and tonumber(due) and nowMs > tonumber(due) then
    return id
  end
end
return ''
`)

// loadScheduledScript caches the script's SHA on the store for EVALSHA use,
// mirroring runServer's startup-time "SCRIPT LOAD" in the reference.
func loadScheduledScript(ctx context.Context, s Store) error {
	return scheduledScript.Load(ctx, s).Err()
}

// evalScheduledScript runs the cached script for one queue and returns the
// selected UUID, or "" if nothing is due.
func evalScheduledScript(ctx context.Context, s Store, queue string) (string, error) {
	res, err := scheduledScript.EvalSha(ctx, s, []string{scheduledKey(queue)}, queue).Result()
	if err != nil {
		return "", &StoreError{Op: "eval scheduled script", Err: err}
	}
	uuid, _ := res.(string)
	return uuid, nil
}
