package push

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/lz1998/RICQ/pkg/metrics"
	log "github.com/lz1998/RICQ/pkg/utils/logger"
)

const (
	DefaultDedupCapacity = 30
	// 累计未命中超过该值时清空缓存
	dedupMissThreshold = 10
)

// DedupKey 去重键
type DedupKey struct {
	Seq int32
	UID int64
}

// DedupCache 有界去重缓存
// 未命中次数超过阈值后整体清空，因此只是近似去重
type DedupCache struct {
	mu     sync.Mutex
	name   string
	cache  *lru.Cache
	misses int
}

// NewDedupCache 创建去重缓存
// 参数：
//   - name：缓存名，用于日志与指标
//   - capacity：容量，<=0时使用默认值
func NewDedupCache(name string, capacity int) *DedupCache {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	c, err := lru.New(capacity)
	if err != nil {
		// 仅在容量非法时出错
		panic(err)
	}
	return &DedupCache{name: name, cache: c}
}

// Exists 查询并记录key，已存在返回true
// 检查与插入在同一临界区内完成
func (d *DedupCache) Exists(key DedupKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if found, _ := d.cache.ContainsOrAdd(key, struct{}{}); found {
		metrics.DedupLookups.WithLabelValues(d.name, "hit").Inc()
		return true
	}
	metrics.DedupLookups.WithLabelValues(d.name, "miss").Inc()
	d.misses++
	if d.misses > dedupMissThreshold {
		log.Debugf("[PUSH] 清空去重缓存%s: misses=%d, len=%d", d.name, d.misses, d.cache.Len())
		d.cache.Purge()
		d.misses = 0
		metrics.DedupFlushes.WithLabelValues(d.name).Inc()
	}
	return false
}

// Len 当前缓存条目数
func (d *DedupCache) Len() int {
	return d.cache.Len()
}

// Misses 自上次清空以来的未命中次数
func (d *DedupCache) Misses() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.misses
}
