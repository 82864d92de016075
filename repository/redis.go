// redis.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-catan/entities"

	"github.com/go-redis/redis/v8"
)

const (
	hexCacheKey = "catan:hexes"
	hexGenKey   = "catan:hexes:gen"
)

var errStaleHexes = errors.New("地图缓存版本已变化")

// Redis 事件广播与地图缓存
type Redis struct {
	Rdb     *redis.Client
	channel string
}

// OpenRedis connects and pings; the caller decides whether a failure is fatal.
func OpenRedis(ctx context.Context, addr, password string, db int, channel string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}
	return &Redis{Rdb: rdb, channel: channel}, nil
}

func (r *Redis) Close() error {
	return r.Rdb.Close()
}

// Publish fans an event out to every process subscribed to the channel.
func (r *Redis) Publish(ctx context.Context, ev entities.GameEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("事件序列化失败: %w", err)
	}
	if err := r.Rdb.Publish(ctx, r.channel, b).Err(); err != nil {
		return fmt.Errorf("事件发布失败: %w", err)
	}
	return nil
}

// Subscribe delivers every event on the channel to fn until ctx is cancelled.
// Undecodable payloads are passed to onErr and skipped.
func (r *Redis) Subscribe(ctx context.Context, fn func(entities.GameEvent), onErr func(error)) error {
	sub := r.Rdb.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("订阅 %s 失败: %w", r.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev entities.GameEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				onErr(fmt.Errorf("事件解析失败: %w", err))
				continue
			}
			fn(ev)
		}
	}
}

// CachedHexes returns the cached map listing and the generation it was read under; ok is false on a miss.
func (r *Redis) CachedHexes(ctx context.Context) ([]entities.Hexagon, int64, bool, error) {
	gen, err := r.hexGeneration(ctx, r.Rdb)
	if err != nil {
		return nil, 0, false, err
	}
	b, err := r.Rdb.Get(ctx, hexCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("读取地图缓存失败: %w", err)
	}
	var hexes []entities.Hexagon
	if err := json.Unmarshal(b, &hexes); err != nil {
		return nil, gen, false, fmt.Errorf("地图缓存解析失败: %w", err)
	}
	return hexes, gen, true, nil
}

// CacheHexes stores the listing unless the generation moved since gen was read.
func (r *Redis) CacheHexes(ctx context.Context, gen int64, hexes []entities.Hexagon, ttl time.Duration) error {
	b, err := json.Marshal(hexes)
	if err != nil {
		return fmt.Errorf("地图序列化失败: %w", err)
	}
	err = r.Rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := r.hexGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleHexes
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, hexCacheKey, b, ttl)
			return nil
		})
		return err
	}, hexGenKey)
	if errors.Is(err, errStaleHexes) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("写入地图缓存失败: %w", err)
	}
	return nil
}

// InvalidateHexes drops the cached listing after the map or the thief changed.
func (r *Redis) InvalidateHexes(ctx context.Context) error {
	_, err := r.Rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, hexGenKey)
		pipe.Del(ctx, hexCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("清除地图缓存失败: %w", err)
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Redis) hexGeneration(ctx context.Context, c getter) (int64, error) {
	gen, err := c.Get(ctx, hexGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("读取地图缓存版本失败: %w", err)
	}
	return gen, nil
}
