// Package cache 预言机查询结果缓存
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

var _ authn.DkimKeyLookup = (*DkimLookup)(nil)

// DkimLookup 带缓存的 DKIM 查询
//
// 只缓存非空结果：未知的信任锚每次都回源，新登记的 DKIM 密钥立即可见。
// 撤销的信任锚在 TTL 内仍可能命中，TTL 应按撤销时效配置。
type DkimLookup struct {
	next   authn.DkimKeyLookup
	cache  *bigcache.BigCache
	logger log.Logger
}

// NewDkimLookup 创建缓存装饰器
func NewDkimLookup(ctx context.Context, next authn.DkimKeyLookup, ttl time.Duration, logger log.Logger) (*DkimLookup, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("dkim cache ttl must be positive, got %s", ttl)
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 10000
	cfg.MaxEntrySize = 512
	cfg.CleanWindow = ttl
	cfg.Verbose = false

	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("创建DKIM缓存失败: %w", err)
	}
	return &DkimLookup{next: next, cache: c, logger: logger}, nil
}

// QueryDkimPubKeys 实现 authn.DkimKeyLookup
func (d *DkimLookup) QueryDkimPubKeys(ctx context.Context, req *types.DkimPubKeysRequest) (*types.DkimPubKeysResponse, error) {
	key := cacheKey(req)
	if raw, err := d.cache.Get(key); err == nil {
		var resp types.DkimPubKeysResponse
		if err := json.Unmarshal(raw, &resp); err == nil {
			return &resp, nil
		}
		_ = d.cache.Delete(key)
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) && d.logger != nil {
		d.logger.Warnf("读取DKIM缓存失败: %v", err)
	}

	resp, err := d.next.QueryDkimPubKeys(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.DkimPubKeys) > 0 {
		if raw, err := json.Marshal(resp); err == nil {
			if err := d.cache.Set(key, raw); err != nil && d.logger != nil {
				d.logger.Warnf("写入DKIM缓存失败: %v", err)
			}
		}
	}
	return resp, nil
}

// Len 缓存条目数
func (d *DkimLookup) Len() int {
	return d.cache.Len()
}

// Close 释放缓存
func (d *DkimLookup) Close() error {
	return d.cache.Close()
}

func cacheKey(req *types.DkimPubKeysRequest) string {
	return req.Domain + "|" + req.Selector + "|" + types.DkimHashKey(req.PoseidonHash)
}
