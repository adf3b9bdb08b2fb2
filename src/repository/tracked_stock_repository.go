package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signaltracker/src/database"
	"signaltracker/src/model"
)

// TrackedStockRepository handles persistence for tracked stocks.
type TrackedStockRepository struct {
	db *gorm.DB
}

// NewTrackedStockRepository creates a new repository instance on MainDB.
func NewTrackedStockRepository() *TrackedStockRepository {
	logger.WithField("component", "TrackedStockRepository").
		Info("Creating new TrackedStockRepository with MainDB")

	return &TrackedStockRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *TrackedStockRepository) WithDB(db *gorm.DB) *TrackedStockRepository {
	return &TrackedStockRepository{db: db}
}

// ListWatching returns every stock still eligible for signal evaluation.
func (r *TrackedStockRepository) ListWatching(ctx context.Context) ([]model.TrackedStock, error) {
	var stocks []model.TrackedStock

	err := r.db.WithContext(ctx).
		Where("status = ?", model.StockStatusWatching).
		Find(&stocks).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TrackedStockRepository",
			"op":   "ListWatching",
		}).WithError(err).Error("Failed to list watching stocks")

		return nil, err
	}

	return stocks, nil
}

// ListByUser returns the stocks tracked by one user, newest first.
func (r *TrackedStockRepository) ListByUser(ctx context.Context, userID uint) ([]model.TrackedStock, error) {
	var stocks []model.TrackedStock

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&stocks).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TrackedStockRepository",
			"op":     "ListByUser",
			"userID": userID,
		}).WithError(err).Error("Failed to list stocks by user")

		return nil, err
	}

	return stocks, nil
}

// Create inserts a new tracked stock row.
func (r *TrackedStockRepository) Create(ctx context.Context, stock *model.TrackedStock) error {
	err := r.db.WithContext(ctx).Create(stock).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TrackedStockRepository",
			"op":     "Create",
			"symbol": stock.Symbol,
			"userID": stock.UserID,
		}).WithError(err).Error("Failed to create tracked stock")

		return err
	}

	return nil
}

// UpdateFields applies a partial row update to one stock.
// Returns gorm.ErrRecordNotFound when the row no longer exists, which can
// happen when an untrack races a running evaluation batch.
func (r *TrackedStockRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.TrackedStock{}).
		Where("id = ?", id).
		Updates(fields)

	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TrackedStockRepository",
			"op":   "UpdateFields",
			"id":   id,
		}).WithError(res.Error).Error("Failed to update tracked stock")

		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteByIDAndUser removes a tracked stock, enforcing ownership in the
// WHERE clause. Returns gorm.ErrRecordNotFound when nothing matched.
func (r *TrackedStockRepository) DeleteByIDAndUser(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.TrackedStock{})

	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TrackedStockRepository",
			"op":     "DeleteByIDAndUser",
			"id":     id,
			"userID": userID,
		}).WithError(res.Error).Error("Failed to delete tracked stock")

		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
