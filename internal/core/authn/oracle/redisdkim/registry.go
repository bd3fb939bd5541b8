// Package redisdkim 基于 Redis 的自托管 DKIM 信任锚
//
// 键格式：dkim:<domain>，值为集合，成员是 DKIM 公钥 Poseidon 哈希（小端序 32 字节）的十六进制。
package redisdkim

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weisyn/absacc/internal/core/authn/metrics"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/types"
)

const (
	keyPrefix  = "dkim:"
	oracleName = "dkim_redis"
)

// setClient Redis 集合操作，测试中以内存实现替换
type setClient interface {
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	Ping(ctx context.Context) error
	Close() error
}

var _ authn.DkimKeyLookup = (*Registry)(nil)

// Registry Redis DKIM 注册表
type Registry struct {
	client setClient
}

// New 连接 Redis 并校验可用性
func New(addr string, timeout time.Duration) (*Registry, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	r := &Registry{client: &goRedisClient{client: client}}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := r.client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return r, nil
}

func newWithClient(client setClient) *Registry {
	return &Registry{client: client}
}

// Key domain 对应的集合键
func Key(domain string) string {
	return keyPrefix + domain
}

// Add 登记 DKIM 哈希
func (r *Registry) Add(ctx context.Context, domain string, poseidonHash []byte) error {
	return r.client.SAdd(ctx, Key(domain), types.DkimHashKey(poseidonHash))
}

// Revoke 撤销 DKIM 哈希
func (r *Registry) Revoke(ctx context.Context, domain string, poseidonHash []byte) error {
	return r.client.SRem(ctx, Key(domain), types.DkimHashKey(poseidonHash))
}

// QueryDkimPubKeys 实现 authn.DkimKeyLookup
func (r *Registry) QueryDkimPubKeys(ctx context.Context, req *types.DkimPubKeysRequest) (*types.DkimPubKeysResponse, error) {
	member := types.DkimHashKey(req.PoseidonHash)
	ok, err := r.client.SIsMember(ctx, Key(req.Domain), member)
	metrics.ObserveOracle(oracleName, err)
	if err != nil {
		return nil, fmt.Errorf("%w: redis dkim lookup: %v", types.ErrOracleUnavailable, err)
	}

	resp := &types.DkimPubKeysResponse{DkimPubKeys: []types.DkimPubKey{}}
	if ok {
		hash, _ := hex.DecodeString(member)
		resp.DkimPubKeys = append(resp.DkimPubKeys, types.DkimPubKey{
			Domain:       req.Domain,
			Selector:     req.Selector,
			PoseidonHash: hash,
		})
	}
	return resp, nil
}

// Close 关闭连接
func (r *Registry) Close() error {
	return r.client.Close()
}

// goRedisClient 以 go-redis 实现 setClient
type goRedisClient struct {
	client *redis.Client
}

func (c *goRedisClient) SIsMember(ctx context.Context, key, member string) (bool, error) {
	return c.client.SIsMember(ctx, key, member).Result()
}

func (c *goRedisClient) SAdd(ctx context.Context, key string, members ...string) error {
	return c.client.SAdd(ctx, key, toArgs(members)...).Err()
}

func (c *goRedisClient) SRem(ctx context.Context, key string, members ...string) error {
	return c.client.SRem(ctx, key, toArgs(members)...).Err()
}

func (c *goRedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *goRedisClient) Close() error {
	return c.client.Close()
}

func toArgs(members []string) []interface{} {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return args
}
