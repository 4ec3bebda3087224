package rules

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/mcpgov/interceptor/internal/classify"
)

// defaultCacheSize bounds the decision memoization cache. Rule sets in
// realistic deployments classify a few hundred distinct (service,
// operation) pairs at most, so this comfortably covers the working set.
const defaultCacheSize = 512

// Evaluator wraps a RuleSet with a bounded decision cache. Decide is a
// pure function of (service, operation) per the spec's data model, so
// once a rule set has no per-rule conditions, results for a given pair
// never change for the process's lifetime and can be memoized — keeping
// classify+decide sub-millisecond even against rule sets with a few
// hundred entries.
//
// When any rule carries a condition, caching is disabled entirely:
// conditions depend on the call's arguments, which are not part of the
// cache key, so a cached decision could be stale for a different call to
// the same tool.
type Evaluator struct {
	ruleSet    *RuleSet
	cacheable  bool
	mu         sync.Mutex
	entries    map[uint64]*list.Element
	order      *list.List
	maxEntries int
}

type cacheEntry struct {
	key      uint64
	decision Decision
}

// NewEvaluator wraps ruleSet with a decision cache.
func NewEvaluator(ruleSet *RuleSet) *Evaluator {
	return &Evaluator{
		ruleSet:    ruleSet,
		cacheable:  !ruleSet.hasConditions(),
		entries:    make(map[uint64]*list.Element),
		order:      list.New(),
		maxEntries: defaultCacheSize,
	}
}

// Decide returns the rule set's decision for (service, operation),
// memoized when the rule set has no conditions.
func (e *Evaluator) Decide(service string, op classify.Operation) Decision {
	if !e.cacheable {
		return e.ruleSet.Decide(service, op)
	}

	key := cacheKey(service, op)

	e.mu.Lock()
	if el, ok := e.entries[key]; ok {
		e.order.MoveToFront(el)
		d := el.Value.(*cacheEntry).decision
		e.mu.Unlock()
		return d
	}
	e.mu.Unlock()

	decision := e.ruleSet.Decide(service, op)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.entries[key]; !ok {
		el := e.order.PushFront(&cacheEntry{key: key, decision: decision})
		e.entries[key] = el
		if e.order.Len() > e.maxEntries {
			tail := e.order.Back()
			if tail != nil {
				e.order.Remove(tail)
				delete(e.entries, tail.Value.(*cacheEntry).key)
			}
		}
	}
	return decision
}

// Evaluate returns the wrapped RuleSet's condition-aware decision. When
// no rule carries a condition the result equals Decide's, so it is served
// from the cache; condition results are never cached (see type doc).
func (e *Evaluator) Evaluate(toolName string, res classify.Result, arguments map[string]any) (Decision, error) {
	if e.cacheable {
		return e.Decide(res.Service, res.Operation), nil
	}
	return e.ruleSet.Evaluate(toolName, res, arguments)
}

// HasConditions reports whether the wrapped rule set carries any
// per-rule CEL conditions.
func (e *Evaluator) HasConditions() bool {
	return e.ruleSet.hasConditions()
}

func cacheKey(service string, op classify.Operation) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(service)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(string(op))
	return h.Sum64()
}
