package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decorops/internal/models"
)

func TestEventsAndStages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/events":
			_, _ = w.Write([]byte(`[{"id":"ev-1","name":"Kapoor Wedding","date":"2026-12-01","status":"design","budget":900000}]`))
		case "/api/v1/workflow/stages":
			_, _ = w.Write([]byte(`[{"id":"design","name":"Design","events":[]},{"id":"costing","name":"Costing","events":[]}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/v1/", "", time.Second, nil)

	events, err := c.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.StageDesign, events[0].Stage)
	assert.Equal(t, models.NewDate(2026, time.December, 1), events[0].Date)

	stages, err := c.Stages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StageInfo{{ID: models.StageDesign, Name: "Design"}, {ID: models.StageCosting, Name: "Costing"}}, stages)
}

func TestUpdateEventStatusSendsPatch(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotAuth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id":"ev 1","status":"costing"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second, nil)
	event, err := c.UpdateEventStatus(context.Background(), "ev 1", models.StageCosting)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/events/ev 1/status", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, map[string]string{"status": "costing"}, gotBody)
	assert.Equal(t, models.StageCosting, event.Stage)
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden for role", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil)
	_, err := c.UpdateEventStatus(context.Background(), "ev-1", models.StageSetup)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Equal(t, "/events/ev-1/status", statusErr.Path)
	assert.Equal(t, "forbidden for role", statusErr.Body)
}

func TestWithTokenDoesNotMutateReceiver(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	base := New(srv.URL, "", time.Second, nil)
	_, err := base.WithToken("abc").Designs(context.Background())
	require.NoError(t, err)
	_, err = base.Designs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer abc", ""}, auths)
}

func TestCreateCostSheetRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload NewCostSheet
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.CostSheet{
			ID: "cs-9", EventID: payload.EventID, Version: 3, Status: payload.Status, Margin: payload.Margin,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil)
	sheet, err := c.CreateCostSheet(context.Background(), NewCostSheet{
		EventID: "ev-1", Margin: 25, Status: models.SheetPendingApproval,
		Items: []NewCostItem{{Category: models.CategoryFlowers, Name: "Marigold", Unit: "kg", Quantity: 40, UnitPrice: 120}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sheet.Version)
	assert.Equal(t, models.SheetPendingApproval, sheet.Status)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := New(srv.URL, "", time.Second, nil)
	_, err := c.Events(context.Background())
	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}
