package kris

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetDataSQL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := seedFeed()
	r := gin.New()
	NewHandler(repo, 2).RegisterRoutes(r.Group("/"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/data/sql", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Meta struct {
			Rows   int    `json:"rows"`
			Window string `json:"window"`
		} `json:"meta"`
		Data struct {
			Source string `json:"source"`
			Rows   []Row  `json:"rows"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Source != "KRI" {
		t.Fatalf("source = %s", resp.Data.Source)
	}
	if resp.Meta.Rows != len(resp.Data.Rows) || resp.Meta.Rows != 2 {
		t.Fatalf("meta.rows = %d, data rows = %d", resp.Meta.Rows, len(resp.Data.Rows))
	}
	if resp.Meta.Window != "trailing_2_months_from_max_as_of_date" {
		t.Fatalf("window = %s", resp.Meta.Window)
	}
}

func TestGetDataSQLEmptyFeed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewMemoryRepo(), 2).RegisterRoutes(r.Group("/"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/data/sql", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Data struct {
			Rows []Row `json:"rows"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Rows == nil {
		t.Fatal("rows should be an empty array, not null")
	}
}
