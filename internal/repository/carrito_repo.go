package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"github.com/redis/go-redis/v9"
)

// CarritoRepository stores session carts. Get never fails on a missing key:
// it returns an empty cart.
type CarritoRepository interface {
	Get(ctx context.Context, key string) (*model.Carrito, error)
	Save(ctx context.Context, key string, c *model.Carrito) error
	Delete(ctx context.Context, key string) error
}

type carritoRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCarritoRepository(rdb *redis.Client, ttl time.Duration) CarritoRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &carritoRepo{rdb: rdb, ttl: ttl}
}

func (r *carritoRepo) Get(ctx context.Context, key string) (*model.Carrito, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NuevoCarrito(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("carrito: get: %w", err)
	}
	c := model.NuevoCarrito()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("carrito: decode: %w", err)
	}
	if c.Items == nil {
		c.Items = model.NuevoCarrito().Items
	}
	return c, nil
}

func (r *carritoRepo) Save(ctx context.Context, key string, c *model.Carrito) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("carrito: encode: %w", err)
	}
	return r.rdb.Set(ctx, key, data, r.ttl).Err()
}

func (r *carritoRepo) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
