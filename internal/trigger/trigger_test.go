package trigger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/internal/trigger"
	"github.com/praval-labs/praval/internal/vectorindex"
)

// phraseService returns a fixed vector per known phrase and counts calls.
type phraseService struct {
	vectors map[string][]float32
	calls   int
	fail    bool
}

func (s *phraseService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("embedding service down")
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func (s *phraseService) ModelName() string { return "phrase-v1" }
func (s *phraseService) Dimensions() int   { return 3 }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func safetyCategories() []trigger.Category {
	return []trigger.Category{
		{
			Name:       "fire_hazard",
			Phrases:    []string{"smoke detected", "open flame observed"},
			Threshold:  0.6,
			Priority:   "critical",
			Recipients: []string{"safety@plant.example"},
		},
		{
			Name:       "chemical_leak",
			Phrases:    []string{"ammonia odor reported"},
			Threshold:  0.65,
			Priority:   "high",
			Recipients: []string{"hazmat@plant.example"},
		},
	}
}

func newService() *phraseService {
	return &phraseService{vectors: map[string][]float32{
		"smoke detected":        {1, 0, 0},
		"open flame observed":   {1, 0, 0},
		"ammonia odor reported": {0, 1, 0},
	}}
}

func TestCacheServesUntilExpiry(t *testing.T) {
	service := newService()
	cache := trigger.NewCache(service, safetyCategories(), time.Hour, discard())
	engine := trigger.NewEngine(cache, discard())

	docID := uuid.New()
	entries := []vectorindex.Entry{{ChunkID: "c:0", DocumentID: docID, Vector: []float32{1, 0, 0}}}

	for i := 0; i < 3; i++ {
		if _, err := engine.Scan(context.Background(), docID, entries); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
	}

	// One embedding call per category on first refresh, none afterwards.
	if service.calls != 2 {
		t.Errorf("embedding calls = %d, want 2", service.calls)
	}
}

func TestCacheInvalidateForcesRefresh(t *testing.T) {
	service := newService()
	cache := trigger.NewCache(service, safetyCategories(), time.Hour, discard())

	if _, err := cache.Centroids(context.Background()); err != nil {
		t.Fatalf("Centroids() error = %v", err)
	}
	first := service.calls

	cache.Invalidate()

	if _, err := cache.Centroids(context.Background()); err != nil {
		t.Fatalf("Centroids() after Invalidate error = %v", err)
	}
	if service.calls != first*2 {
		t.Errorf("embedding calls = %d, want %d after forced refresh", service.calls, first*2)
	}
}

func TestCacheServesStaleOnRefreshFailure(t *testing.T) {
	service := newService()
	cache := trigger.NewCache(service, safetyCategories(), time.Hour, discard())

	if _, err := cache.Centroids(context.Background()); err != nil {
		t.Fatalf("Centroids() error = %v", err)
	}

	service.fail = true
	cache.Invalidate()

	centroids, err := cache.Centroids(context.Background())
	if err != nil {
		t.Fatalf("Centroids() with stale data error = %v", err)
	}
	if len(centroids) != 2 {
		t.Errorf("stale centroids = %d, want 2", len(centroids))
	}
}

func TestCacheEmptyAndFailingIsAnError(t *testing.T) {
	service := newService()
	service.fail = true
	cache := trigger.NewCache(service, safetyCategories(), time.Hour, discard())

	_, err := cache.Centroids(context.Background())
	if !errors.Is(err, trigger.ErrStaleCache) {
		t.Errorf("error = %v, want ErrStaleCache", err)
	}
}

func TestCacheNoCategories(t *testing.T) {
	cache := trigger.NewCache(newService(), nil, time.Hour, discard())

	if _, err := cache.Centroids(context.Background()); err == nil {
		t.Error("Centroids() error = nil, want failure with no categories")
	}
}

func TestScanMatchesByThreshold(t *testing.T) {
	cache := trigger.NewCache(newService(), safetyCategories(), time.Hour, discard())
	engine := trigger.NewEngine(cache, discard())
	docID := uuid.New()

	entries := []vectorindex.Entry{
		{ChunkID: "c:0", DocumentID: docID, Vector: []float32{1, 0, 0}}, // fire only
		{ChunkID: "c:1", DocumentID: docID, Vector: []float32{0, 1, 0}}, // chemical only
		{ChunkID: "c:2", DocumentID: docID, Vector: []float32{0, 0, 1}}, // neither
		{ChunkID: "c:3", DocumentID: docID, Vector: []float32{1, 1, 0}}, // both
	}

	events, err := engine.Scan(context.Background(), docID, entries)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got := map[string][]string{}
	for _, ev := range events {
		got[ev.ChunkID] = append(got[ev.ChunkID], ev.Category)
		if ev.DocumentID != docID {
			t.Errorf("event DocumentID = %s, want %s", ev.DocumentID, docID)
		}
		if ev.ID == uuid.Nil {
			t.Error("event ID not assigned")
		}
	}

	if len(got["c:0"]) != 1 || got["c:0"][0] != "fire_hazard" {
		t.Errorf("c:0 categories = %v, want [fire_hazard]", got["c:0"])
	}
	if len(got["c:1"]) != 1 || got["c:1"][0] != "chemical_leak" {
		t.Errorf("c:1 categories = %v, want [chemical_leak]", got["c:1"])
	}
	if len(got["c:2"]) != 0 {
		t.Errorf("c:2 categories = %v, want none", got["c:2"])
	}
	if len(got["c:3"]) != 2 {
		t.Errorf("c:3 categories = %v, want both", got["c:3"])
	}

	for _, ev := range events {
		switch ev.Category {
		case "fire_hazard":
			if ev.Priority != "critical" || len(ev.Recipients) != 1 {
				t.Errorf("fire event routing = %q %v", ev.Priority, ev.Recipients)
			}
		case "chemical_leak":
			if ev.Priority != "high" {
				t.Errorf("chemical event priority = %q", ev.Priority)
			}
		}
	}
}
