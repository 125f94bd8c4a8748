package sheet

import (
	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru"
	"github.com/influxdata/calcsheet/eval"
	"github.com/prometheus/client_golang/prometheus"
)

// parseCache maps formula source text to its parsed form.
// Entries are immutable; concurrent misses on the same source may both parse,
// and the first insert wins.
type parseCache struct {
	cache  *lru.Cache
	es     eval.ExecutionState
	hits   prometheus.Counter
	misses prometheus.Counter
}

func newParseCache(size int, es eval.ExecutionState, m *metrics) (*parseCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &parseCache{
		cache:  c,
		es:     es,
		hits:   m.parseCacheHits,
		misses: m.parseCacheMisses,
	}, nil
}

func (c *parseCache) lookup(source string) *parsedFormula {
	if v, ok := c.cache.Get(source); ok {
		c.hits.Inc()
		return v.(*parsedFormula)
	}
	c.misses.Inc()
	p := parseFormula(source, c.es)
	if found, _ := c.cache.ContainsOrAdd(source, p); found {
		if v, ok := c.cache.Get(source); ok {
			return v.(*parsedFormula)
		}
	}
	return p
}

func (c *parseCache) len() int {
	return c.cache.Len()
}

// planCache maps the fingerprint of a field list to its plan.
// The full key is kept to detect fingerprint collisions.
type planCache struct {
	cache  *lru.Cache
	hits   prometheus.Counter
	misses prometheus.Counter
}

type planEntry struct {
	key  string
	plan *plan
}

func newPlanCache(size int, m *metrics) (*planCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &planCache{
		cache:  c,
		hits:   m.planCacheHits,
		misses: m.planCacheMisses,
	}, nil
}

func fingerprint(key string) uint64 {
	return xxhash.Sum64([]byte(key))
}

// get returns the plan of the deduplicated fields, building it on a miss.
func (c *planCache) get(fields []FieldSpec, src formulas) *plan {
	key := planKey(fields)
	fp := fingerprint(key)
	if v, ok := c.cache.Get(fp); ok {
		if e := v.(*planEntry); e.key == key {
			c.hits.Inc()
			return e.plan
		}
	}
	c.misses.Inc()
	p := newPlan(fields, src)
	c.cache.Add(fp, &planEntry{key: key, plan: p})
	return p
}

func (c *planCache) len() int {
	return c.cache.Len()
}
