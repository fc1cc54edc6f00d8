package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

// authedRequest builds a request carrying the context values the auth
// middleware would have set.
func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), "userID", primitive.NewObjectID().Hex())
	ctx = context.WithValue(ctx, "orgID", primitive.NewObjectID().Hex())
	ctx = context.WithValue(ctx, "userName", "Test User")
	ctx = context.WithValue(ctx, "userRole", "admin")
	return req.WithContext(ctx)
}

func TestBuildListFilter(t *testing.T) {
	orgID := primitive.NewObjectID()
	deptA := primitive.NewObjectID()
	deptB := primitive.NewObjectID()

	t.Run("bare filter scopes to organization", func(t *testing.T) {
		filter, err := buildListFilter(orgID, map[string][]string{})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"organizationId": orgID}, filter)
	})

	t.Run("single status stays a plain match", func(t *testing.T) {
		filter, err := buildListFilter(orgID, map[string][]string{"status": {"pending"}})
		require.NoError(t, err)
		assert.Equal(t, "pending", filter["status"])
	})

	t.Run("comma joined statuses become an $in", func(t *testing.T) {
		filter, err := buildListFilter(orgID, map[string][]string{"status": {"pending, in-progress"}})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$in": []string{"pending", "in-progress"}}, filter["status"])
	})

	t.Run("department ids become an $in of object ids", func(t *testing.T) {
		filter, err := buildListFilter(orgID, map[string][]string{
			"departments": {deptA.Hex() + "," + deptB.Hex()},
		})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$in": []primitive.ObjectID{deptA, deptB}}, filter["departmentId"])
	})

	t.Run("malformed department id is rejected", func(t *testing.T) {
		_, err := buildListFilter(orgID, map[string][]string{"departments": {"not-an-id"}})
		assert.Error(t, err)
	})

	t.Run("responsible is a case insensitive substring", func(t *testing.T) {
		filter, err := buildListFilter(orgID, map[string][]string{"responsible": {"silva"}})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$regex": "silva", "$options": "i"}, filter["responsibleName"])
	})

	t.Run("search spans title description and code", func(t *testing.T) {
		filter, err := buildListFilter(orgID, map[string][]string{"search": {"solda"}})
		require.NoError(t, err)
		or, ok := filter["$or"].([]bson.M)
		require.True(t, ok)
		assert.Len(t, or, 3)
	})

	t.Run("to bound is inclusive through the end of the day", func(t *testing.T) {
		filter, err := buildListFilter(orgID, map[string][]string{
			"from": {"2024-01-01"},
			"to":   {"2024-01-31"},
		})
		require.NoError(t, err)
		rng, ok := filter["occurrenceDate"].(bson.M)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rng["$gte"])
		lte, ok := rng["$lte"].(time.Time)
		require.True(t, ok)
		assert.Equal(t, 31, lte.Day())
		assert.Equal(t, 23, lte.Hour())
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		_, err := buildListFilter(orgID, map[string][]string{"from": {"31/01/2024"}})
		assert.Error(t, err)
	})
}

func TestCreateNonConformance_Validation(t *testing.T) {
	cases := []struct {
		name string
		body CreateNonConformanceRequest
	}{
		{"missing title", CreateNonConformanceRequest{
			OccurrenceDate: "2024-05-01", DepartmentID: primitive.NewObjectID().Hex(),
		}},
		{"missing occurrence date", CreateNonConformanceRequest{
			Title: "Peça fora de especificação", DepartmentID: primitive.NewObjectID().Hex(),
		}},
		{"missing department", CreateNonConformanceRequest{
			Title: "Peça fora de especificação", OccurrenceDate: "2024-05-01",
		}},
		{"unknown status", CreateNonConformanceRequest{
			Title: "Peça fora de especificação", OccurrenceDate: "2024-05-01",
			DepartmentID: primitive.NewObjectID().Hex(), Status: "archived",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, _ := json.Marshal(tc.body)
			req := authedRequest(http.MethodPost, "/api/nonconformances", bytes.NewReader(payload))
			w := httptest.NewRecorder()

			CreateNonConformance(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateNonConformance_RequiresAuthContext(t *testing.T) {
	payload, _ := json.Marshal(CreateNonConformanceRequest{
		Title:          "Peça fora de especificação",
		OccurrenceDate: "2024-05-01",
		DepartmentID:   primitive.NewObjectID().Hex(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/nonconformances", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	CreateNonConformance(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetNonConformance(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		nonConformanceCollection = mt.Coll

		recID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "qualicontrol.nonconformances", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: recID},
			{Key: "title", Value: "Solda fora do padrão"},
			{Key: "status", Value: models.StatusPending},
			{Key: "occurrenceDate", Value: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)},
		}))

		router := mux.NewRouter()
		router.HandleFunc("/api/nonconformances/{id}", GetNonConformance).Methods("GET")

		req := authedRequest(http.MethodGet, "/api/nonconformances/"+recID.Hex(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var rec models.NonConformance
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.Equal(t, "Solda fora do padrão", rec.Title)
		assert.Equal(t, models.StatusPending, rec.Status)
	})

	mt.Run("not found", func(mt *mtest.T) {
		nonConformanceCollection = mt.Coll

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "qualicontrol.nonconformances", mtest.FirstBatch))

		router := mux.NewRouter()
		router.HandleFunc("/api/nonconformances/{id}", GetNonConformance).Methods("GET")

		req := authedRequest(http.MethodGet, "/api/nonconformances/"+primitive.NewObjectID().Hex(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		nonConformanceCollection = mt.Coll

		router := mux.NewRouter()
		router.HandleFunc("/api/nonconformances/{id}", GetNonConformance).Methods("GET")

		req := authedRequest(http.MethodGet, "/api/nonconformances/not-hex", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListNonConformances(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns empty array not null", func(mt *mtest.T) {
		nonConformanceCollection = mt.Coll

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "qualicontrol.nonconformances", mtest.FirstBatch))

		req := authedRequest(http.MethodGet, "/api/nonconformances", nil)
		w := httptest.NewRecorder()
		ListNonConformances(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", string(bytes.TrimSpace(w.Body.Bytes())))
	})

	mt.Run("rejects bad department filter before querying", func(mt *mtest.T) {
		nonConformanceCollection = mt.Coll

		req := authedRequest(http.MethodGet, "/api/nonconformances?departments=zzz", nil)
		w := httptest.NewRecorder()
		ListNonConformances(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateNonConformance_Validation(t *testing.T) {
	t.Run("unknown status", func(t *testing.T) {
		payload, _ := json.Marshal(UpdateNonConformanceRequest{Status: "archived"})
		router := mux.NewRouter()
		router.HandleFunc("/api/nonconformances/{id}", UpdateNonConformance).Methods("PUT")

		req := authedRequest(http.MethodPut, "/api/nonconformances/"+primitive.NewObjectID().Hex(), bytes.NewReader(payload))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteNonConformance_RequiresAdminRole(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/nonconformances/{id}", DeleteNonConformance).Methods("DELETE")

	req := httptest.NewRequest(http.MethodDelete, "/api/nonconformances/"+primitive.NewObjectID().Hex(), nil)
	ctx := context.WithValue(req.Context(), "userID", primitive.NewObjectID().Hex())
	ctx = context.WithValue(ctx, "orgID", primitive.NewObjectID().Hex())
	ctx = context.WithValue(ctx, "userRole", "viewer")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
