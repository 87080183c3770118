package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xint-dev/xint/internal/common/config"
)

const dayLayout = "2006-01-02"

// RedisTracker keeps per-day cost hashes in Redis so several server
// processes can share one budget.
//
//	<prefix>:costs:<day>        hash operation -> cost
//	<prefix>:costs:<day>:calls  hash operation -> calls
//	<prefix>:costs:days         set of days with spend
//	<prefix>:costs:limit        daily limit override
type RedisTracker struct {
	logger       *zap.Logger
	client       *redis.Client
	prefix       string
	defaultLimit float64
	now          func() time.Time
}

var _ Tracker = (*RedisTracker)(nil)

// NewRedisTracker connects to Redis and verifies the connection
func NewRedisTracker(ctx context.Context, logger *zap.Logger, cfg config.RedisConfig, defaultLimit float64) (*RedisTracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "xint"
	}
	return &RedisTracker{
		logger:       logger.Named("budget.redis"),
		client:       client,
		prefix:       prefix,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}, nil
}

func (t *RedisTracker) costKey(day string) string {
	return t.prefix + ":costs:" + day
}

func (t *RedisTracker) callsKey(day string) string {
	return t.prefix + ":costs:" + day + ":calls"
}

func (t *RedisTracker) daysKey() string {
	return t.prefix + ":costs:days"
}

func (t *RedisTracker) limitKey() string {
	return t.prefix + ":costs:limit"
}

func (t *RedisTracker) Check(ctx context.Context) (Snapshot, error) {
	limit, err := t.limit(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	spent, err := t.daySpent(ctx, t.now().Format(dayLayout))
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(spent, limit), nil
}

func (t *RedisTracker) Spend(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = t.now()
	}
	day := e.At.In(t.now().Location()).Format(dayLayout)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrByFloat(ctx, t.costKey(day), e.Operation, e.CostUSD)
		pipe.HIncrBy(ctx, t.callsKey(day), e.Operation, 1)
		pipe.SAdd(ctx, t.daysKey(), day)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record spend: %w", err)
	}
	return nil
}

func (t *RedisTracker) SetLimit(ctx context.Context, limitUSD float64) error {
	return t.client.Set(ctx, t.limitKey(), strconv.FormatFloat(limitUSD, 'f', -1, 64), 0).Err()
}

func (t *RedisTracker) Summary(ctx context.Context, p Period) (Summary, error) {
	snap, err := t.Check(ctx)
	if err != nil {
		return Summary{}, err
	}
	days, err := t.client.SMembers(ctx, t.daysKey()).Result()
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Period: p, ByOperation: map[string]OperationTotal{}, Today: snap}
	since := p.Since(t.now())
	for _, day := range days {
		if !since.IsZero() && day < since.Format(dayLayout) {
			continue
		}
		costs, err := t.client.HGetAll(ctx, t.costKey(day)).Result()
		if err != nil {
			return Summary{}, err
		}
		calls, err := t.client.HGetAll(ctx, t.callsKey(day)).Result()
		if err != nil {
			return Summary{}, err
		}
		for op, raw := range costs {
			cost, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				t.logger.Warn("skipping malformed cost", zap.String("day", day), zap.String("operation", op))
				continue
			}
			n, _ := strconv.Atoi(calls[op])
			sum.add(op, n, cost)
		}
	}
	return sum, nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}

func (t *RedisTracker) limit(ctx context.Context) (float64, error) {
	limit, err := t.client.Get(ctx, t.limitKey()).Float64()
	if errors.Is(err, redis.Nil) {
		return t.defaultLimit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read budget limit: %w", err)
	}
	return limit, nil
}

func (t *RedisTracker) daySpent(ctx context.Context, day string) (float64, error) {
	vals, err := t.client.HVals(ctx, t.costKey(day)).Result()
	if err != nil {
		return 0, fmt.Errorf("read spend: %w", err)
	}
	var spent float64
	for _, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		spent += f
	}
	return spent, nil
}
