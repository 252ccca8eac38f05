package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"fanhub/cache"
	"fanhub/config"
	"fanhub/controllers"
	dbpkg "fanhub/db"
	"fanhub/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

func TestMain(m *testing.M) {
	// sqlite compares timestamps as text; keep one zone for every value we store
	time.Local = time.UTC
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	assoc  models.Association
}

type serverOption func(*config.Configuration, *Dependencies)

func withInsights(gen controllers.InsightGenerator) serverOption {
	return func(_ *config.Configuration, deps *Dependencies) { deps.Insights = gen }
}

func withActivation() serverOption {
	return func(cfg *config.Configuration, _ *Dependencies) { cfg.Security.RequireActivation = true }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	database, err := dbpkg.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(database))
	t.Cleanup(func() { database.Close() })

	cfg := config.Default()
	cfg.Payments.WebhookSecret = webhookSecret
	deps := Dependencies{
		DB:     database,
		Cache:  cache.NewMemoryStore(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	engine := gin.New()
	Initialize(engine, cfg, deps)

	assoc := models.Association{Name: "FC Porto", Slug: "fc-porto", ShortName: "FCP", IsActive: true}
	require.NoError(t, database.Create(&assoc).Error)

	return &testServer{t: t, engine: engine, db: database, assoc: assoc}
}

func (s *testServer) raw(method, path, token string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(s.t, err)
	}
	return s.raw(method, path, token, payload, nil)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// register signs a member up through the API and returns its token pair.
func (s *testServer) register(email string) controllers.TokenResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":           "Fan " + email,
		"email":          email,
		"password":       "secret1",
		"phone":          "+351 912 345 678",
		"association_id": s.assoc.ID,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var tokens controllers.TokenResponse
	decode(s.t, w, &tokens)
	return tokens
}

// staff registers a member and promotes it to association staff.
func (s *testServer) staff(email string) controllers.TokenResponse {
	s.t.Helper()
	tokens := s.register(email)
	require.NoError(s.t, s.db.Model(&models.Member{}).Where("id = ?", tokens.Member.ID).
		UpdateColumns(map[string]any{"type": models.MEMBER_TYPE_STAFF, "admin": true}).Error)
	return tokens
}

func (s *testServer) seedMatch(kickoff time.Time, capacity int64) models.Match {
	s.t.Helper()
	match := models.Match{
		AssociationID: s.assoc.ID, HomeTeam: "FC Porto", AwayTeam: "Benfica", Competition: "Liga",
		Venue: "Dragao", KickoffAt: &kickoff, Status: models.MATCH_STATUS_SCHEDULED,
		TicketPriceCents: 3500, Currency: "EUR", Capacity: capacity,
	}
	require.NoError(s.t, s.db.Create(&match).Error)
	return match
}

func (s *testServer) reloadMember(id int64) models.Member {
	s.t.Helper()
	var m models.Member
	require.NoError(s.t, s.db.First(&m, id).Error)
	return m
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
