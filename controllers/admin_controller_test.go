package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/models"
	"github.com/greenmart/storefront/utils"
)

type usersBackend struct {
	mux     *http.ServeMux
	deletes int
	reject  bool
}

func newUsersBackend(t *testing.T) *usersBackend {
	t.Helper()
	b := &usersBackend{mux: http.NewServeMux()}

	users := []models.User{
		{ID: 1, Username: "alice", Email: "alice@example.com", IsAdmin: true},
		{ID: 2, Username: "bob", Email: "bob@example.com"},
		{ID: 3, Username: "carol", Email: "carol@greenmart.io"},
	}
	b.mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			if b.reject {
				http.Error(w, `{"detail":"user has orders"}`, http.StatusBadRequest)
				return
			}
			b.deletes++
			w.WriteHeader(http.StatusNoContent)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			http.Error(w, `{"detail":"invalid page"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(api.Page[models.User]{Count: len(users), Results: users})
	})
	return b
}

func newAdmin(t *testing.T, backend http.Handler) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, 5*time.Second, nil)
	a := NewAdminController(client, utils.NewCache(nil, time.Minute), 10, nil)

	r := gin.New()
	r.GET("/users", a.ListUsers)
	r.DELETE("/users/:id", a.DeleteUser)
	r.DELETE("/comments/:id", a.DeleteComment)
	return r
}

type tableData struct {
	Items      []models.User `json:"items"`
	Filtered   int           `json:"filtered"`
	Pagination struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
		Total      int `json:"total"`
	} `json:"pagination"`
}

func listUsers(t *testing.T, r *gin.Engine, query string) tableData {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var data tableData
	decodeEnvelope(t, rec, &data)
	return data
}

func TestAdminListUsersFiltering(t *testing.T) {
	r := newAdmin(t, newUsersBackend(t).mux)

	t.Run("no filter returns the whole fetched page", func(t *testing.T) {
		data := listUsers(t, r, "")
		assert.Len(t, data.Items, 3)
		assert.Equal(t, 3, data.Pagination.Total)
		assert.Equal(t, 1, data.Pagination.TotalPages)
	})

	t.Run("substring match is case-insensitive across name and email", func(t *testing.T) {
		data := listUsers(t, r, "?q=GREENMART.IO")
		require.Equal(t, 1, data.Filtered)
		assert.Equal(t, "carol", data.Items[0].Username)
	})

	t.Run("role filter is an equality check", func(t *testing.T) {
		data := listUsers(t, r, "?q=&role=admin")
		require.Len(t, data.Items, 1)
		assert.Equal(t, "alice", data.Items[0].Username)

		data = listUsers(t, r, "?role=normal")
		assert.Len(t, data.Items, 2)
	})

	t.Run("no matches is an empty success", func(t *testing.T) {
		data := listUsers(t, r, "?q=zebra")
		assert.Empty(t, data.Items)
		assert.Equal(t, 3, data.Pagination.Total, "the held total is unchanged")
	})
}

func TestAdminDeleteUserConfirmGate(t *testing.T) {
	backend := newUsersBackend(t)
	r := newAdmin(t, backend.mux)
	listUsers(t, r, "")

	t.Run("without confirmation nothing is deleted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/2", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, backend.deletes, "backend never sees the delete")
	})

	t.Run("confirmed delete removes the row from the held table", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/2?confirm=true", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, backend.deletes)
	})
}

func TestAdminDeleteCommentConfirmGate(t *testing.T) {
	deletes := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/comments/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deletes++
		w.WriteHeader(http.StatusNoContent)
	})
	r := newAdmin(t, mux)

	t.Run("without confirmation nothing is deleted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/comments/11", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, deletes)
	})

	t.Run("confirmed delete reaches the backend", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/comments/11?confirm=true", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, deletes)
	})
}

func TestAdminDeleteUserBackendRejection(t *testing.T) {
	backend := newUsersBackend(t)
	r := newAdmin(t, backend.mux)
	before := listUsers(t, r, "")
	require.Len(t, before.Items, 3)

	backend.reject = true
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/2?confirm=true", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The held table only re-renders what it still holds.
	backend.reject = false
	after := listUsers(t, r, "")
	assert.Len(t, after.Items, 3, "a rejected delete leaves the table intact")
}

func TestAdminListUsersPageClamp(t *testing.T) {
	r := newAdmin(t, newUsersBackend(t).mux)

	data := listUsers(t, r, "?page=5")
	assert.Equal(t, 1, data.Pagination.Page, "a page past the end clamps back")
	assert.Len(t, data.Items, 3)
}
