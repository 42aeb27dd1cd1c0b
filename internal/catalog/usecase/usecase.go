package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/catalog"
	"github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/pkg/cache"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/flangoapp/flango-pos-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productsIndex = "flango-products"

type catalogUseCase struct {
	repo   catalog.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *catalogUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *catalogUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	cacheKey := uc.listCacheKey(filters)

	if uc.cache != nil && cacheKey != "" {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var products []model.Product
			if err := json.Unmarshal([]byte(val), &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil && cacheKey != "" {
		if data, err := json.Marshal(products); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return products, nil
}

func (uc *catalogUseCase) listCacheKey(filters *dto.ProductFilters) string {
	data, err := json.Marshal(filters)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("products:list:%s:%x", filters.ClubID, md5.Sum(data))
}

func (uc *catalogUseCase) invalidateListCache(ctx context.Context, clubID string) {
	if uc.cache == nil {
		return
	}
	pattern := fmt.Sprintf("products:list:%s:*", clubID)
	keys, err := uc.cache.Client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *catalogUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.Name == "" {
		return nil, errors.New("product name is required")
	}
	if input.RefillEnabled && input.RefillPrice == nil {
		return nil, errors.New("refill price is required when refill is enabled")
	}

	now := time.Now()
	var emoji *string
	if input.Emoji != "" {
		emoji = &input.Emoji
	}

	p := &model.Product{
		BaseModel:              model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ClubID:                 input.ClubID,
		Name:                   input.Name,
		Emoji:                  emoji,
		Price:                  input.Price,
		MaxPerDay:              input.MaxPerDay,
		Unhealthy:              input.Unhealthy,
		IsEnabled:              true,
		RefillEnabled:          input.RefillEnabled,
		RefillPrice:            input.RefillPrice,
		RefillTimeLimitMinutes: input.RefillTimeLimitMinutes,
		RefillMaxRefills:       input.RefillMaxRefills,
		SortOrder:              input.SortOrder,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background(), p.ClubID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *catalogUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("product not found")
	}

	p.Name = input.Name
	if input.Emoji != "" {
		e := input.Emoji
		p.Emoji = &e
	} else {
		p.Emoji = nil
	}
	p.Price = input.Price
	p.MaxPerDay = input.MaxPerDay
	p.Unhealthy = input.Unhealthy
	p.IsEnabled = input.IsEnabled
	p.RefillEnabled = input.RefillEnabled
	p.RefillPrice = input.RefillPrice
	p.RefillTimeLimitMinutes = input.RefillTimeLimitMinutes
	p.RefillMaxRefills = input.RefillMaxRefills
	p.SortOrder = input.SortOrder
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background(), p.ClubID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *catalogUseCase) SetProductEnabled(ctx context.Context, id string, enabled bool) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.New("product not found")
	}

	if err := uc.repo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}

	go uc.invalidateListCache(context.Background(), p.ClubID)
	return nil
}

func (uc *catalogUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	mapping := `{
		"mappings": {
			"properties": {
				"club_id": { "type": "keyword" },
				"name": { "type": "text" },
				"price": { "type": "double" },
				"unhealthy": { "type": "boolean" },
				"is_enabled": { "type": "boolean" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productsIndex, mapping)

	if err := uc.es.Index(ctx, productsIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}
