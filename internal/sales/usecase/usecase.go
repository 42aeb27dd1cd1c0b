package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/sales"
	"github.com/flangoapp/flango-pos-service/internal/sales/dto"
	"github.com/flangoapp/flango-pos-service/pkg/cache"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/flangoapp/flango-pos-service/pkg/search"
	"go.uber.org/zap"
)

const salesIndex = "flango-sales"

type salesUseCase struct {
	repo   sales.Repository
	cache  *cache.MemoryStore
	es     *search.Client
	logger logger.ZapLogger
	now    func() time.Time
}

func NewSalesUseCase(repo sales.Repository, store *cache.MemoryStore, es *search.Client, log logger.ZapLogger) sales.UseCase {
	return &salesUseCase{
		repo:   repo,
		cache:  store,
		es:     es,
		logger: log,
		now:    time.Now,
	}
}

// NewSalesUseCaseWithClock exists for tests that steer the day boundary.
func NewSalesUseCaseWithClock(repo sales.Repository, store *cache.MemoryStore, es *search.Client, log logger.ZapLogger, now func() time.Time) sales.UseCase {
	uc := NewSalesUseCase(repo, store, es, log).(*salesUseCase)
	uc.now = now
	return uc
}

// The cache key embeds the local day stamp, so an entry cached before
// midnight can never satisfy a lookup after midnight even inside the TTL.
func (uc *salesUseCase) cacheKey(childID, clubID string, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", childID, clubID, day.Format("2006-01-02"))
}

func (uc *salesUseCase) TodaysSalesForChild(ctx context.Context, childID, clubID string) ([]model.SaleRow, error) {
	if childID == "" {
		return nil, errors.New("child id is required")
	}

	from, to := sales.LocalDayRange(uc.now())
	key := uc.cacheKey(childID, clubID, from)

	if v, ok := uc.cache.Get(key); ok {
		if rows, ok := v.([]model.SaleRow); ok {
			return rows, nil
		}
	}

	rows, err := uc.repo.SalesForRange(ctx, childID, clubID, from, to)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(key, rows)
	return rows, nil
}

func (uc *salesUseCase) TodaysQuantities(ctx context.Context, childID, clubID string) (map[string]int, error) {
	rows, err := uc.TodaysSalesForChild(ctx, childID, clubID)
	if err != nil {
		return nil, err
	}
	qty := map[string]int{}
	for _, row := range rows {
		for _, it := range row.Items {
			qty[it.ProductID] += it.Quantity
		}
	}
	return qty, nil
}

func (uc *salesUseCase) TodaysSpend(ctx context.Context, childID, clubID string) (float64, error) {
	rows, err := uc.TodaysSalesForChild(ctx, childID, clubID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, row := range rows {
		for _, it := range row.Items {
			total += float64(it.Quantity) * it.Price
		}
	}
	return total, nil
}

func (uc *salesUseCase) CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Sale, float64, error) {
	if input.CustomerID == "" {
		return nil, 0, errors.New("customer id is required")
	}
	if len(input.Items) == 0 {
		return nil, 0, errors.New("sale has no items")
	}

	sale, newBalance, err := uc.repo.CommitSale(ctx, input)
	if err != nil {
		return nil, 0, err
	}

	uc.InvalidateTodaysSalesCache()
	go uc.indexSale(context.Background(), sale)

	return sale, newBalance, nil
}

func (uc *salesUseCase) UndoLastSale(ctx context.Context, childID, operatorID string) (*model.Sale, float64, error) {
	sale, newBalance, err := uc.repo.UndoLastSale(ctx, childID, operatorID)
	if err != nil {
		return nil, 0, err
	}

	uc.InvalidateTodaysSalesCache()
	go uc.indexSale(context.Background(), sale)

	return sale, newBalance, nil
}

// ListSales serves the history endpoint from the reporting index when one is
// configured, falling back to postgres when the search fails.
func (uc *salesUseCase) ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, int, error) {
	if uc.es != nil {
		items, count, err := uc.searchSales(ctx, filters)
		if err == nil {
			return items, count, nil
		}
		uc.logger.Warn("sales search via elasticsearch failed, falling back to postgres", zap.Error(err))
	}
	return uc.repo.ListSales(ctx, filters)
}

// SalesSearchQuery builds the history query: term filters for club and
// customer, a created_at range, newest first, page/size pagination.
func SalesSearchQuery(f *dto.SaleFilters) map[string]interface{} {
	must := []map[string]interface{}{}
	if f.ClubID != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"club_id": f.ClubID},
		})
	}
	if f.CustomerID != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"customer_id": f.CustomerID},
		})
	}
	if f.From != nil || f.To != nil {
		createdAt := map[string]interface{}{}
		if f.From != nil {
			createdAt["gte"] = f.From.Format(time.RFC3339)
		}
		if f.To != nil {
			createdAt["lt"] = f.To.Format(time.RFC3339)
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{"created_at": createdAt},
		})
	}

	var queryPart map[string]interface{}
	if len(must) == 0 {
		queryPart = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		queryPart = map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		}
	}

	query := map[string]interface{}{
		"query": queryPart,
		"sort": []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}
	if f.PageSize > 0 {
		query["size"] = f.PageSize
		page := f.Page
		if page < 1 {
			page = 1
		}
		query["from"] = (page - 1) * f.PageSize
	}
	return query
}

func (uc *salesUseCase) searchSales(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, int, error) {
	res, err := uc.es.Search(ctx, salesIndex, SalesSearchQuery(f))
	if err != nil {
		return nil, 0, err
	}

	items := make([]model.Sale, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var s model.Sale
		if err := json.Unmarshal(hit.Source, &s); err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, res.Hits.Total.Value, nil
}

func (uc *salesUseCase) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return uc.repo.GetCustomer(ctx, id)
}

func (uc *salesUseCase) ApplyDeposit(ctx context.Context, input *dto.DepositInput) (float64, error) {
	if input.Amount <= 0 {
		return 0, errors.New("deposit amount must be positive")
	}
	newBalance, err := uc.repo.ApplyDeposit(ctx, input.CustomerID, input.Amount)
	if err != nil {
		return 0, err
	}
	uc.InvalidateTodaysSalesCache()
	return newBalance, nil
}

func (uc *salesUseCase) SetBalance(ctx context.Context, customerID string, balance float64) (float64, error) {
	newBalance, err := uc.repo.SetBalance(ctx, customerID, balance)
	if err != nil {
		return 0, err
	}
	uc.InvalidateTodaysSalesCache()
	return newBalance, nil
}

func (uc *salesUseCase) InvalidateTodaysSalesCache() {
	uc.cache.InvalidateAll()
}

func (uc *salesUseCase) indexSale(ctx context.Context, sale *model.Sale) {
	if uc.es == nil {
		return
	}
	mapping := `{
		"mappings": {
			"properties": {
				"club_id": { "type": "keyword" },
				"customer_id": { "type": "keyword" },
				"total": { "type": "double" },
				"status": { "type": "keyword" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, salesIndex, mapping)

	if err := uc.es.Index(ctx, salesIndex, sale.ID, sale); err != nil {
		uc.logger.Error("failed to index sale", zap.String("sale_id", sale.ID), zap.Error(err))
	}
}
