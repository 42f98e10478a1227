package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `[
  {
    "id": "3_4_Sit-Up",
    "name": "3/4 Sit-Up",
    "force": "pull",
    "level": "beginner",
    "mechanic": "compound",
    "equipment": "body only",
    "primaryMuscles": ["abdominals"],
    "secondaryMuscles": [],
    "instructions": ["Lie down on the floor."],
    "category": "strength",
    "images": ["3_4_Sit-Up/0.jpg", "3_4_Sit-Up/1.jpg"]
  },
  {
    "id": "Ab_Roller",
    "name": "Ab Roller",
    "force": null,
    "level": "intermediate",
    "mechanic": null,
    "equipment": null,
    "primaryMuscles": ["abdominals"],
    "secondaryMuscles": ["shoulders"],
    "instructions": [],
    "category": "strength",
    "images": []
  }
]`

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dist/exercises.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/dist/exercises.json", "https://img.example/dist/", time.Second, 1)
	defs, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "3/4 Sit-Up", defs[0].Name)
	require.NotNil(t, defs[0].Force)
	assert.Equal(t, "pull", *defs[0].Force)
	assert.Equal(t, []string{
		"https://img.example/dist/3_4_Sit-Up/0.jpg",
		"https://img.example/dist/3_4_Sit-Up/1.jpg",
	}, defs[0].Images)

	assert.Nil(t, defs[1].Equipment)
	assert.Nil(t, defs[1].Mechanic)
}

func TestFetcher_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, DefaultImageBaseURL, time.Second, 2)
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetcher_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, "", time.Second, 1).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding catalog")
}

func TestFetcher_ImageURLs(t *testing.T) {
	f := NewFetcher("", "https://cdn.example/dist", 0, 0)
	assert.Equal(t,
		[]string{"https://cdn.example/dist/a/0.jpg", "https://other.example/x.png"},
		f.ImageURLs([]string{"/a/0.jpg", "https://other.example/x.png"}),
	)
	assert.Empty(t, f.ImageURLs(nil))
}
