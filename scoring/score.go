package scoring

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mazzeh-api/models"
)

type ScoreLogHook struct{}

func (h *ScoreLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Scoring: " + entry.Message
	return nil
}

func (h *ScoreLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Round turns an average into the published score: 0 for no reviews, two decimals otherwise.
func Round(avg sql.NullFloat64) float64 {
	if !avg.Valid || avg.Float64 == 0 {
		return 0
	}
	return decimal.NewFromFloat(avg.Float64).Round(2).InexactFloat64()
}

// Scorer computes restaurant and item scores from reviews on every read.
// A cache, when configured, is consulted first and must be invalidated on review writes.
type Scorer struct {
	db    *gorm.DB
	cache Cache
	log   *logrus.Entry
}

func NewScorer(db *gorm.DB, cache Cache, log *logrus.Entry) *Scorer {
	if cache == nil {
		cache = NopCache{}
	}
	return &Scorer{db: db, cache: cache, log: log}
}

func restaurantKey(id uint) string { return fmt.Sprintf("score:restaurant:%d", id) }
func itemKey(id uint) string       { return fmt.Sprintf("score:item:%d", id) }

// Restaurant averages the scores of reviews left on the restaurant's orders.
func (s *Scorer) Restaurant(ctx context.Context, restaurantID uint) (float64, error) {
	return s.cached(ctx, restaurantKey(restaurantID), func() (float64, error) {
		var avg sql.NullFloat64
		err := s.db.WithContext(ctx).Model(&models.Review{}).
			Joins("JOIN orders ON orders.id = reviews.order_id").
			Where("orders.restaurant_id = ?", restaurantID).
			Select("AVG(reviews.score)").
			Scan(&avg).Error
		if err != nil {
			return 0, fmt.Errorf("restaurant %d score: %w", restaurantID, err)
		}
		return Round(avg), nil
	})
}

// Item averages the scores of reviews left on orders containing the item.
// An order holding the item on several lines still counts once.
func (s *Scorer) Item(ctx context.Context, itemID uint) (float64, error) {
	return s.cached(ctx, itemKey(itemID), func() (float64, error) {
		var avg sql.NullFloat64
		orderIDs := s.db.Model(&models.OrderItem{}).Select("order_id").Where("item_id = ?", itemID)
		err := s.db.WithContext(ctx).Model(&models.Review{}).
			Where("order_id IN (?)", orderIDs).
			Select("AVG(score)").
			Scan(&avg).Error
		if err != nil {
			return 0, fmt.Errorf("item %d score: %w", itemID, err)
		}
		return Round(avg), nil
	})
}

func (s *Scorer) cached(ctx context.Context, key string, compute func() (float64, error)) (float64, error) {
	if v, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warnf("cache read %s failed: %v", key, err)
	} else if ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, v); err != nil {
		s.log.Warnf("cache write %s failed: %v", key, err)
	}
	return v, nil
}

// FillRestaurant sets r.Score and the scores of any loaded items.
func (s *Scorer) FillRestaurant(ctx context.Context, r *models.RestaurantProfile) error {
	score, err := s.Restaurant(ctx, r.ID)
	if err != nil {
		return err
	}
	r.Score = score
	return s.FillItems(ctx, r.Items)
}

func (s *Scorer) FillRestaurants(ctx context.Context, rs []models.RestaurantProfile) error {
	for i := range rs {
		if err := s.FillRestaurant(ctx, &rs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scorer) FillItems(ctx context.Context, items []models.Item) error {
	for i := range items {
		score, err := s.Item(ctx, items[i].ID)
		if err != nil {
			return err
		}
		items[i].Score = score
	}
	return nil
}

// orderKeys lists the cached scores fed by reviews on the given orders:
// their restaurants and every item they contain.
func (s *Scorer) orderKeys(ctx context.Context, orderIDs []uint) ([]string, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var keys []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, o := range orders {
		add(restaurantKey(o.RestaurantID))
		for _, oi := range o.Items {
			add(itemKey(oi.ItemID))
		}
	}
	return keys, nil
}

// InvalidateOrder drops the cached scores a review on this order affects.
func (s *Scorer) InvalidateOrder(ctx context.Context, orderID uint) error {
	keys, err := s.orderKeys(ctx, []uint{orderID})
	if err != nil {
		return fmt.Errorf("invalidate order %d scores: %w", orderID, err)
	}
	return s.Invalidate(ctx, keys...)
}

// ReviewerKeys lists the cached scores that reviews written by userID feed into.
// Collect them before the reviews go away, then pass them to Invalidate.
func (s *Scorer) ReviewerKeys(ctx context.Context, userID uint) ([]string, error) {
	var orderIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ?", userID).
		Pluck("order_id", &orderIDs).Error; err != nil {
		return nil, fmt.Errorf("user %d reviews: %w", userID, err)
	}
	return s.orderKeys(ctx, orderIDs)
}

func (s *Scorer) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate scores: %w", err)
	}
	return nil
}
