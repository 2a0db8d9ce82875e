package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardshelf/internal/catalog"
)

const sampleFeed = `[
  {"title": "Catan", "genre": ["Strategy"], "rating": 7.2, "year": 1995,
   "players": {"min": 3, "max": 4}, "playtime": 90, "age": 10,
   "difficulty": "Medium", "language": "Dansk", "location": "Stue", "shelf": "A1"},
  {"title": "Azul", "genre": "Abstract", "rating": 7.8}
]`

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	records, err := NewLoader(srv.URL).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Catan", records[0].Title)
	assert.Equal(t, 3, records[0].Players.Min)
	assert.Equal(t, []string{"Abstract"}, []string(records[1].Genre))
}

func TestLoad_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	records, err := NewLoader(srv.URL, WithRetries(2, time.Millisecond)).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoad_GivesUpAsUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewLoader(srv.URL, WithRetries(1, time.Millisecond)).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoad_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewLoader(srv.URL, WithRetries(3, time.Millisecond)).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoad_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title": "not an array"}`))
	}))
	defer srv.Close()

	_, err := NewLoader(srv.URL).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoad_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(srv.URL, WithRetries(5, time.Hour)).Load(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o600))

	records, err := NewLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = NewLoader("file://" + path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = NewLoader(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDecode_SkipsUndecodableEntries(t *testing.T) {
	records, skipped, err := Decode([]byte(`[{"title":"Ok","rating":5},"not a game",42,null,{"title":"Also ok","rating":6}]`))
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	assert.Len(t, records, 2)

	records, skipped, err = Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.NotNil(t, records)
}

func TestDecode_MistypedFieldsAreLeftAbsent(t *testing.T) {
	records, skipped, err := Decode([]byte(`[
		{"title":"Catan","rating":7,"year":"1995","playtime":90},
		{"title":"Azul","rating":8,"players":{"min":"2","max":4},"genre":["Abstract"]},
		{"title":"Bad rating","rating":"high","age":8}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, records, 3)

	assert.Equal(t, "Catan", records[0].Title)
	assert.Nil(t, records[0].Year)
	require.NotNil(t, records[0].Playtime)
	assert.Equal(t, 90, *records[0].Playtime)

	assert.Nil(t, records[1].Players)
	assert.Equal(t, catalog.StringList{"Abstract"}, records[1].Genre)

	assert.Zero(t, records[2].Rating)
	require.NotNil(t, records[2].Age)
	assert.Equal(t, 8, *records[2].Age)
}

func TestValidate(t *testing.T) {
	problems, err := Validate([]byte(sampleFeed))
	require.NoError(t, err)
	assert.Empty(t, problems)

	problems, err = Validate([]byte(`[{"title": "", "rating": 12, "players": {"min": 2}}]`))
	require.NoError(t, err)
	assert.Len(t, problems, 3)

	_, err = Validate([]byte(`not json`))
	assert.Error(t, err)
}
