package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/cfg"
	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/shop-backend/pkg/clients"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix     = "product:"
	categoriesKey        = "categories:all"
	productVersionPrefix = "product_ver:"
	productsVersionKey   = "product_ver:all"
	categoriesVersionKey = "categories:ver"
	scanBatch            = 100

	// счётчик поколений живёт заведомо дольше любой фоновой записи в кэш
	versionTTL = 24 * time.Hour
)

// CacheRepo кэш карточек товаров и списка категорий в Redis.
type CacheRepo struct {
	client      *clients.RedisClient
	productConv converter.ProductConverter
	catConv     converter.CategoryConverter
	cfg         *cfg.RedisCfg
	logger      logger.Logger
}

func NewCacheRepo(
	client *clients.RedisClient,
	productConv converter.ProductConverter,
	catConv converter.CategoryConverter,
	cfg *cfg.RedisCfg,
	logger logger.Logger,
) *CacheRepo {
	return &CacheRepo{
		client:      client,
		productConv: productConv,
		catConv:     catConv,
		cfg:         cfg,
		logger:      logger,
	}
}

// GetProduct возвращает товар из кэша. Промах и битая запись возвращаются как (nil, nil).
func (c *CacheRepo) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	key := c.productKey(id)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.ProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.dropBroken(ctx, key, err)
		return nil, nil
	}

	product, err := c.productConv.ToEntity(&model)
	if err != nil || product.ID != id {
		c.logger.Warnf("Cache ID mismatch: key: %s, model_id: %s", key, model.ID)
		c.dropBroken(ctx, key, err)
		return nil, nil
	}

	return product, nil
}

// ProductVersion возвращает поколение карточки товара. Оно растёт при каждой инвалидации товара
// и при сбросе всех карточек. Читать его нужно до чтения товара из БД.
func (c *CacheRepo) ProductVersion(ctx context.Context, id uuid.UUID) (int64, error) {
	version, err := readVersion(ctx, c.client.Client, c.productVersionKey(id), productsVersionKey)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return version, nil
}

// SetProduct записывает карточку, только если с момента чтения version товар не инвалидировали.
// Устаревшая запись молча пропускается.
func (c *CacheRepo) SetProduct(ctx context.Context, product *domain.Product, version int64) error {
	data, err := json.Marshal(c.productConv.ToRedisModel(product))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	err = c.setIfVersion(ctx, c.productKey(product.ID), data, c.cfg.ProductTTL, version, c.productVersionKey(product.ID), productsVersionKey)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteProducts удаляет товары из кэша по ID и сдвигает их поколения.
func (c *CacheRepo) DeleteProducts(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		for _, id := range ids {
			bumpVersion(ctx, pipe, c.productVersionKey(id))
			pipe.Del(ctx, c.productKey(id))
		}
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// FlushProducts удаляет все карточки товаров. Сначала сдвигается общее поколение, чтобы
// запоздавшие записи не вернули старые карточки, затем ключи собираются полным проходом SCAN
// и удаляются пачками.
func (c *CacheRepo) FlushProducts(ctx context.Context) error {
	if _, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		bumpVersion(ctx, pipe, productsVersionKey)
		return nil
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	var keys []string
	iter := c.client.Client.Scan(ctx, 0, productKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := c.client.Client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// GetCategories возвращает список категорий из кэша, промах как (nil, nil).
func (c *CacheRepo) GetCategories(ctx context.Context) ([]domain.Category, error) {
	data, err := c.client.Client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.CategoryRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		c.dropBroken(ctx, categoriesKey, err)
		return nil, nil
	}

	categories, err := c.catConv.ToArrEntity(models)
	if err != nil {
		c.dropBroken(ctx, categoriesKey, err)
		return nil, nil
	}

	return categories, nil
}

// CategoriesVersion поколение списка категорий, читается до запроса в БД.
func (c *CacheRepo) CategoriesVersion(ctx context.Context) (int64, error) {
	version, err := readVersion(ctx, c.client.Client, categoriesVersionKey)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return version, nil
}

func (c *CacheRepo) SetCategories(ctx context.Context, categories []domain.Category, version int64) error {
	data, err := json.Marshal(c.catConv.ToArrRedisModel(categories))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.setIfVersion(ctx, categoriesKey, data, c.cfg.CategoryTTL, version, categoriesVersionKey); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) DeleteCategories(ctx context.Context) error {
	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		bumpVersion(ctx, pipe, categoriesVersionKey)
		pipe.Del(ctx, categoriesKey)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// setIfVersion пишет значение под WATCH ключей поколения. Если поколение уже другое
// или сдвинулось во время записи, значение не пишется.
func (c *CacheRepo) setIfVersion(
	ctx context.Context,
	key string,
	data []byte,
	ttl time.Duration,
	version int64,
	versionKeys ...string,
) error {
	err := c.client.Client.Watch(ctx, func(tx *r.Tx) error {
		current, err := readVersion(ctx, tx, versionKeys...)
		if err != nil {
			return err
		}
		if current != version {
			c.logger.Debugf("cache write skipped: key=%s version=%d current=%d", key, version, current)
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe r.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, versionKeys...)

	if errors.Is(err, r.TxFailedErr) {
		c.logger.Debugf("cache write skipped: key=%s invalidated during write", key)
		return nil
	}
	return err
}

type versionReader interface {
	MGet(ctx context.Context, keys ...string) *r.SliceCmd
}

// readVersion суммирует счётчики поколений. Сумма меняется, если сдвинулся любой из них.
func readVersion(ctx context.Context, rd versionReader, keys ...string) (int64, error) {
	values, err := rd.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}

	var version int64
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("version key %s: %w", keys[i], err)
		}
		version += n
	}
	return version, nil
}

func bumpVersion(ctx context.Context, pipe r.Pipeliner, key string) {
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, versionTTL)
}

// dropBroken удаляет запись, которую не удалось разобрать.
func (c *CacheRepo) dropBroken(ctx context.Context, key string, cause error) {
	c.logger.Warnf("Redis unmarshal failed: key: %s, error: %v", key, cause)
	if err := c.client.Client.Del(ctx, key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

func (c *CacheRepo) productVersionKey(id uuid.UUID) string {
	return productVersionPrefix + id.String()
}

// productKey возвращает Redis-ключ для одного товара
func (c *CacheRepo) productKey(id uuid.UUID) string {
	return fmt.Sprintf("%s%s", productKeyPrefix, id)
}
