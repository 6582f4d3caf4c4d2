package redis

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zd8899/isitjustme/internal/domain"
)

// voteRateLimitScript implements a token bucket per voter. It refills
// fractionally from the elapsed time since the last call, consumes one token
// when available, and expires idle buckets after a full refill period.
// ARGV: [1]=now_ms, [2]=capacity, [3]=rate (tokens per minute)
var voteRateLimitScript = goredis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last_refill = tonumber(redis.call('HGET', KEYS[1], 'last_refill'))
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])

if tokens == nil then
    tokens = capacity
    last_refill = now
end

local elapsed_ms = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed_ms * rate / 60000.0)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'last_refill', tostring(now))
redis.call('PEXPIRE', KEYS[1], math.ceil(capacity / rate * 60000) * 2)
return allowed
`)

// VoteRateLimiter is a token bucket over Redis, keyed per voter identity so
// registered and anonymous voters get independent budgets.
type VoteRateLimiter struct {
	rdb      *goredis.Client
	clock    clockwork.Clock
	capacity int
	rate     int // tokens per minute
}

func NewVoteRateLimiter(rdb *goredis.Client, clock clockwork.Clock, capacity, rate int) *VoteRateLimiter {
	return &VoteRateLimiter{
		rdb:      rdb,
		clock:    clock,
		capacity: capacity,
		rate:     rate,
	}
}

// Allow reports whether the voter may cast now, consuming a token when so.
func (v *VoteRateLimiter) Allow(ctx context.Context, voter domain.VoterID) (bool, error) {
	key := "rate_limit:votes:" + voter.String()

	result := voteRateLimitScript.Run(ctx, v.rdb, []string{key},
		v.clock.Now().UnixMilli(),
		v.capacity,
		v.rate,
	)
	if err := result.Err(); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed, err := result.Int()
	if err != nil {
		return false, fmt.Errorf("failed to parse rate limit result: %w", err)
	}
	return allowed == 1, nil
}
