package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
	"trivia-service/internal/metrics"
)

const categoriesKey = "trivia:categories"

// CategoryRepository caches categories in Redis and falls back to a loader on cache miss.
// Categories are stored as: HSET trivia:categories {id} {type}
type CategoryRepository struct {
	client *redis.Client
	loader memory.CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCategoryRepository(client *redis.Client, loader memory.CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if categories, ok := r.cached(ctx); ok {
		metrics.CategoryCache.WithLabelValues("redis", "hit").Inc()
		return categories, nil
	}
	metrics.CategoryCache.WithLabelValues("redis", "miss").Inc()

	result, err, _ := r.sf.Do(categoriesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if categories, ok := r.cached(ctx); ok {
			return categories, nil
		}

		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}
		if len(categories) == 0 {
			return categories, nil
		}

		pipe := r.client.TxPipeline()
		pipe.Del(ctx, categoriesKey)
		for _, c := range categories {
			pipe.HSet(ctx, categoriesKey, strconv.Itoa(int(c.ID)), c.Type)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, categoriesKey, ttl)
		}
		// best-effort: a failed write only costs another load
		_, _ = pipe.Exec(ctx)

		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

func (r *CategoryRepository) GetCategory(ctx context.Context, id domain.CategoryID) (domain.Category, error) {
	categories, err := r.ListCategories(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	return memory.FindCategory(categories, id)
}

func (r *CategoryRepository) cached(ctx context.Context) ([]domain.Category, bool) {
	entries, err := r.client.HGetAll(ctx, categoriesKey).Result()
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	categories, ok := buildCategoriesFromCache(entries)
	return categories, ok
}

func buildCategoriesFromCache(entries map[string]string) ([]domain.Category, bool) {
	categories := make([]domain.Category, 0, len(entries))
	for field, typ := range entries {
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, false
		}
		categories = append(categories, domain.Category{ID: domain.CategoryID(id), Type: typ})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, true
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
