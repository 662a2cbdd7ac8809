package rotation

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pitboss-backend/internal/db"
	"pitboss-backend/internal/model"
	"pitboss-backend/internal/store"
)

// newTestStore opens a private in-memory SQLite database with the full
// schema migrated.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))
	return store.NewGormStore(gormDB)
}

func seedDealer(t *testing.T, s store.Store, name string, status model.DealerStatus, seniority int, area string, certs ...model.GameType) model.Dealer {
	t.Helper()
	dealer := model.Dealer{
		Name:          name,
		Status:        status,
		Seniority:     seniority,
		PreferredArea: area,
		Active:        true,
	}
	require.NoError(t, s.DB().Create(&dealer).Error)
	for _, game := range certs {
		cert := model.Certification{DealerID: dealer.ID, GameType: game, Active: true}
		require.NoError(t, s.DB().Create(&cert).Error)
		dealer.Certifications = append(dealer.Certifications, cert)
	}
	return dealer
}

func seedTable(t *testing.T, s store.Store, number string, game model.GameType, minBet int, area string) model.GameTable {
	t.Helper()
	table := model.GameTable{
		TableNumber:     number,
		GameType:        game,
		Status:          model.TableOpen,
		MinBet:          minBet,
		RequiredDealers: 1,
		Area:            area,
	}
	require.NoError(t, s.DB().Create(&table).Error)
	return table
}

func countOpenAssignments(t *testing.T, s store.Store, query string, arg any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(&model.Assignment{}).
		Where(query, arg).
		Where("is_current = ? AND end_time IS NULL", true).
		Count(&n).Error)
	return n
}
