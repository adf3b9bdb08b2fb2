package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"signaltracker/src/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestTrackedStockRepositoryListWatching(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TrackedStockRepository{}).WithDB(mockDB)

	createdAt := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "symbol", "buy_above", "sell_below", "status", "created_at", "updated_at"}).
		AddRow(1, 1, "AAPL", "200", "180", "watching", createdAt, createdAt).
		AddRow(2, 2, "MSFT", "500", "350", "watching", createdAt, createdAt)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tracked_stocks" WHERE status = $1`)).
		WithArgs(model.StockStatusWatching).
		WillReturnRows(rows)

	stocks, err := repo.ListWatching(context.Background())
	if err != nil {
		t.Fatalf("unexpected error listing watching stocks: %v", err)
	}
	if len(stocks) != 2 {
		t.Fatalf("expected 2 watching stocks, got %d", len(stocks))
	}
	if stocks[0].Symbol != "AAPL" || !stocks[0].BuyAbove.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("unexpected first row: %+v", stocks[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTrackedStockRepositoryListByUser(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TrackedStockRepository{}).WithDB(mockDB)

	rows := sqlmock.NewRows([]string{"id", "user_id", "symbol", "status"}).
		AddRow(3, 7, "TSLA", "buy_signal")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tracked_stocks" WHERE user_id = $1 ORDER BY created_at DESC`)).
		WithArgs(uint(7)).
		WillReturnRows(rows)

	stocks, err := repo.ListByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error listing stocks by user: %v", err)
	}
	if len(stocks) != 1 || stocks[0].Symbol != "TSLA" {
		t.Fatalf("unexpected result: %+v", stocks)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTrackedStockRepositoryUpdateFields(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TrackedStockRepository{}).WithDB(mockDB)

	now := time.Date(2025, 6, 2, 15, 4, 5, 0, time.UTC)
	fields := map[string]interface{}{
		"last_price":          decimal.RequireFromString("210"),
		"status":              model.StockStatusBuySignal,
		"signal_triggered_at": &now,
		"updated_at":          now,
	}

	t.Run("updates one row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tracked_stocks" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := repo.UpdateFields(context.Background(), 1, fields); err != nil {
			t.Fatalf("expected update to succeed, got %v", err)
		}
	})

	t.Run("missing row maps to ErrRecordNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tracked_stocks" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpdateFields(context.Background(), 99, fields)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound for vanished row, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTrackedStockRepositoryDeleteByIDAndUser(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TrackedStockRepository{}).WithDB(mockDB)

	t.Run("deletes owned row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tracked_stocks" WHERE id = $1 AND user_id = $2`)).
			WithArgs(uint(5), uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := repo.DeleteByIDAndUser(context.Background(), 5, 7); err != nil {
			t.Fatalf("expected delete to succeed, got %v", err)
		}
	})

	t.Run("wrong owner is not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tracked_stocks" WHERE id = $1 AND user_id = $2`)).
			WithArgs(uint(5), uint(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.DeleteByIDAndUser(context.Background(), 5, 8)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound for foreign row, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTrackedStockRepositoryCreate(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TrackedStockRepository{}).WithDB(mockDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tracked_stocks"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	stock := &model.TrackedStock{
		UserID:    1,
		Symbol:    "AAPL",
		BuyAbove:  decimal.RequireFromString("200"),
		SellBelow: decimal.RequireFromString("180"),
		Status:    model.StockStatusWatching,
	}
	if err := repo.Create(context.Background(), stock); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if stock.ID != 1 {
		t.Fatalf("expected returned id to be assigned, got %d", stock.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}
