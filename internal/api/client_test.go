package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plumber-cd/ez-desk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://127.0.0.1:8420", false},
		{"https://desk.example.com/", false},
		{"", true},
		{"ftp://host", true},
		{"http://", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := New(tt.url, "", time.Second)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	c, err := New("https://desk.example.com/", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://desk.example.com", c.BaseURL())
}

func TestStatusErrorDecoding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "already exists"})
		case "/plain":
			http.Error(w, "gateway exploded", http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c, err := New(ts.URL, "", time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	err = c.Get(ctx, "/json", nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Equal(t, "http 409: already exists", err.Error())

	err = c.Get(ctx, "/plain", nil)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "gateway exploded", se.Message)

	err = c.Get(ctx, "/missing", nil)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "http 404: Not Found", err.Error())
}

func TestRequestHeadersAndBody(t *testing.T) {
	var gotAuth, gotType, gotMethod, gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "t1", "subject": "Issue", "message": "Help"})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "tok", time.Second)
	require.NoError(t, err)

	rec, err := c.Create(context.Background(), &domain.Ticket{Subject: "Issue", Message: "Help"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/tickets", gotPath)
	assert.Equal(t, "Issue", gotBody["subject"])
	assert.Equal(t, "t1", rec.RawID())
	assert.IsType(t, &domain.Ticket{}, rec)
}

func TestRecordPathEscapesID(t *testing.T) {
	assert.Equal(t, "/api/tasks/a%2Fb", recordPath(domain.KindTask, "a/b"))
}

func TestContextCancel(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	c, err := New(ts.URL, "", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.List(ctx, domain.KindTask)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListDecodesKind(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a1","employee":"Ann","date":"2024-03-01","check_in":"09:00"}]`))
	}))
	defer ts.Close()

	c, err := New(ts.URL, "", time.Second)
	require.NoError(t, err)

	list, err := c.List(context.Background(), domain.KindAttendance)
	require.NoError(t, err)
	require.Len(t, list, 1)
	a, ok := list[0].(*domain.Attendance)
	require.True(t, ok)
	assert.Equal(t, "09:00", a.CheckIn)
}
