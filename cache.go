package textops

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of evaluations kept by NewCachingEvaluator when size <= 0.
const DefaultCacheSize = 256

// CachingEvaluator memoizes successful evaluations of an inner evaluator and collapses
// concurrent identical requests into one call. Failures are never cached.
type CachingEvaluator struct {
	inner Evaluator
	cache *lru.Cache[string, ToolEvaluation]
	group singleflight.Group
}

// NewCachingEvaluator wraps inner with an LRU cache holding up to size evaluations.
func NewCachingEvaluator(inner Evaluator, size int) (*CachingEvaluator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, ToolEvaluation](size)
	if err != nil {
		return nil, err
	}
	return &CachingEvaluator{inner: inner, cache: cache}, nil
}

// Evaluate implements Evaluator.
func (c *CachingEvaluator) Evaluate(ctx context.Context, req EvaluateRequest) (ToolEvaluation, error) {
	key := cacheKey(req)
	if eval, ok := c.cache.Get(key); ok {
		return cloneEvaluation(eval), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		eval, err := c.inner.Evaluate(ctx, req)
		if err != nil {
			return ToolEvaluation{}, err
		}
		c.cache.Add(key, eval)
		return eval, nil
	})
	if err != nil {
		return ToolEvaluation{}, err
	}
	return cloneEvaluation(v.(ToolEvaluation)), nil
}

// Len returns the number of cached evaluations.
func (c *CachingEvaluator) Len() int { return c.cache.Len() }

// Purge drops every cached evaluation.
func (c *CachingEvaluator) Purge() { c.cache.Purge() }

func cacheKey(req EvaluateRequest) string {
	h := sha256.New()
	for _, part := range []string{req.TaskDescription, req.Text, req.ExampleOutput} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cloneEvaluation(e ToolEvaluation) ToolEvaluation {
	e.Args = append([]Arg{}, e.Args...)
	return e
}

var _ Evaluator = (*CachingEvaluator)(nil)
