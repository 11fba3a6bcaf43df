package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solace/models"
	"solace/services/match"

	"github.com/gin-gonic/gin"
)

type stubMatchingService struct {
	matches []models.Match
	total   int
}

func (s *stubMatchingService) FindMatches(ctx context.Context, req models.MatchRequest) ([]models.Match, int, error) {
	return s.matches, s.total, nil
}

func (s *stubMatchingService) GetRecommended(ctx context.Context, limit int) ([]models.ProviderProfile, error) {
	return nil, nil
}

func (s *stubMatchingService) GetMatchDetails(ctx context.Context, friendID string) (*match.MatchDetails, error) {
	return nil, nil
}

func TestFindMatchesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	h := &MatchHandler{Svc: &stubMatchingService{
		matches: []models.Match{{Compatibility: 85}},
		total:   7,
	}}
	router := gin.New()
	router.POST("/api/matches/find", h.FindMatches)

	body := `{"situation":"dinner party","category":"social","duration":2,"location":{"address":"NYC"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/matches/find", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool                       `json:"success"`
		Data    []models.Match             `json:"data"`
		Meta    map[string]json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 {
		t.Fatalf("envelope = %s", rec.Body.String())
	}
	if string(resp.Meta["totalMatches"]) != "7" {
		t.Errorf("meta.totalMatches = %s, want 7", resp.Meta["totalMatches"])
	}
	if string(resp.Meta["situation"]) != `"dinner party"` {
		t.Errorf("meta.situation = %s, want the submitted situation", resp.Meta["situation"])
	}
}
