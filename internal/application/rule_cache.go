package application

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/booking-engine/internal/rules"
)

// ruleCache memoizes each tenant's active rule set so repeated admissions
// against the same tenant do not re-read the rule table. Entries expire on
// a short TTL; rule edits performed by the administration layer become
// visible within one TTL period.
type ruleCache struct {
	lru *expirable.LRU[string, []rules.Rule]
}

func newRuleCache(size int, ttl time.Duration) *ruleCache {
	if size <= 0 {
		size = 128
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ruleCache{lru: expirable.NewLRU[string, []rules.Rule](size, nil, ttl)}
}

func (c *ruleCache) Get(tenantID string) ([]rules.Rule, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	return c.lru.Get(tenantID)
}

func (c *ruleCache) Store(tenantID string, ruleSet []rules.Rule) {
	if c == nil || c.lru == nil {
		return
	}
	cloned := make([]rules.Rule, len(ruleSet))
	copy(cloned, ruleSet)
	c.lru.Add(tenantID, cloned)
}

func (c *ruleCache) Purge() {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Purge()
}
