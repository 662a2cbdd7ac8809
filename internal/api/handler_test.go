package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pitboss-backend/internal/db"
	"pitboss-backend/internal/model"
	"pitboss-backend/internal/rotation"
	"pitboss-backend/internal/store"
)

type testEnv struct {
	store  store.Store
	router *gin.Engine
}

// newTestEnv wires a full handler stack over a private in-memory
// database. Each call gets its own rate limiter, so tests do not
// starve each other of tokens.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))

	s := store.NewGormStore(gormDB)
	manager := rotation.NewManager(s)
	scorer := rotation.NewScorer(s)
	sweeper := rotation.NewSweeper(s, scorer, manager, true)
	monitor := rotation.NewRotationMonitor(s, manager, 20*time.Minute, 2*time.Minute, time.Hour, 15)

	handler := NewHandler(s, manager, scorer, sweeper, monitor, &webpush.Options{})
	return &testEnv{store: s, router: NewRouter(handler)}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedDealer(t *testing.T, name string, seniority int, certs ...model.GameType) model.Dealer {
	t.Helper()
	dealer := model.Dealer{
		Name:      name,
		Status:    model.DealerAvailable,
		Seniority: seniority,
		Active:    true,
	}
	require.NoError(t, e.store.DB().Create(&dealer).Error)
	for _, game := range certs {
		require.NoError(t, e.store.DB().Create(&model.Certification{
			DealerID: dealer.ID, GameType: game, Active: true,
		}).Error)
	}
	return dealer
}

func (e *testEnv) seedTable(t *testing.T, number string, game model.GameType, minBet int) model.GameTable {
	t.Helper()
	table := model.GameTable{
		TableNumber:     number,
		GameType:        game,
		Status:          model.TableOpen,
		MinBet:          minBet,
		RequiredDealers: 1,
	}
	require.NoError(t, e.store.DB().Create(&table).Error)
	return table
}

func TestPostCommand(t *testing.T) {
	t.Run("returns the requirement and ranked candidates", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedTable(t, "BJ-101", model.GameBlackjack, 25)
		env.seedDealer(t, "Ana", 5, model.GameBlackjack)
		env.seedDealer(t, "Bo", 2)

		w := env.do(t, http.MethodPost, "/api/commands", gin.H{
			"text": "I need a dealer for BJ-101",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Requirement struct {
				TableNumber string `json:"table_number"`
			} `json:"requirement"`
			Candidates []struct {
				Dealer struct {
					Name string `json:"name"`
				} `json:"dealer"`
				Score int `json:"score"`
			} `json:"candidates"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "BJ-101", body.Requirement.TableNumber)
		require.Len(t, body.Candidates, 2)
		assert.Equal(t, "Ana", body.Candidates[0].Dealer.Name)
		assert.Greater(t, body.Candidates[0].Score, body.Candidates[1].Score)
	})

	t.Run("maps engine errors to statuses", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedTable(t, "CR301", model.GameCraps, 10)
		env.seedDealer(t, "Ana", 5)

		w := env.do(t, http.MethodPost, "/api/commands", gin.H{"text": "need a dealer over here"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodPost, "/api/commands", gin.H{"text": "dealer for BJ-999"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodPost, "/api/commands", gin.H{"text": "dealer for CR301"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestAssignmentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	dealer := env.seedDealer(t, "Ana", 3, model.GameBlackjack)
	table := env.seedTable(t, "BJ-101", model.GameBlackjack, 25)

	w := env.do(t, http.MethodPost, "/api/assignments", gin.H{
		"dealer_id": dealer.ID,
		"table_id":  table.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Assignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, dealer.ID, created.DealerID)
	assert.True(t, created.IsCurrent)

	w = env.do(t, http.MethodPost, "/api/tables/"+table.ID+"/push", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pushed struct {
		Ended *model.Assignment `json:"ended"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pushed))
	require.NotNil(t, pushed.Ended)
	assert.Equal(t, created.ID, pushed.Ended.ID)

	// A second push on the now empty table ends nothing.
	w = env.do(t, http.MethodPost, "/api/tables/"+table.ID+"/push", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pushed))
	assert.Nil(t, pushed.Ended)
}

func TestSwapEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ana := env.seedDealer(t, "Ana", 3)
	bo := env.seedDealer(t, "Bo", 3)
	first := env.seedTable(t, "BJ-101", model.GameBlackjack, 25)
	second := env.seedTable(t, "R-201", model.GameRoulette, 25)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/assignments", gin.H{
		"dealer_id": ana.ID, "table_id": first.ID,
	}).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/assignments", gin.H{
		"dealer_id": bo.ID, "table_id": second.ID,
	}).Code)

	w := env.do(t, http.MethodPost, "/api/swap", gin.H{
		"dealer_a": ana.ID,
		"dealer_b": bo.ID,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBreakEndpoints(t *testing.T) {
	env := newTestEnv(t)
	dealer := env.seedDealer(t, "Ana", 3)

	w := env.do(t, http.MethodPost, "/api/dealers/"+dealer.ID+"/break", gin.H{"type": "meal"})
	require.Equal(t, http.StatusCreated, w.Code)

	var record model.BreakRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, model.BreakMeal, record.Type)
	assert.Equal(t, model.DefaultMealMinutes, record.DurationMinutes)

	w = env.do(t, http.MethodPost, "/api/dealers/"+dealer.ID+"/return", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/dealers/"+dealer.ID+"/return", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no open break left to end")

	w = env.do(t, http.MethodPost, "/api/dealers/"+dealer.ID+"/break", gin.H{"type": "siesta"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweepEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedTable(t, "BJ-101", model.GameBlackjack, 25)
	env.seedDealer(t, "Ana", 5, model.GameBlackjack)

	w := env.do(t, http.MethodPost, "/api/sweep", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result rotation.SweepResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.AssignmentsCreated)
	assert.Equal(t, []string{"BJ-101"}, result.TablesStaffed)
}

func TestAlertEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = env.do(t, http.MethodPost, "/api/alerts/nothing-pending/dismiss", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
