package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-journal-backend/internal/services"
)

type fakeClassifier struct {
	mu     sync.Mutex
	calls  int
	result []string
}

func (c *fakeClassifier) Classify(_ context.Context, _ string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.result
}

func (c *fakeClassifier) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enrichment did not complete")
	}
}

func TestEnricherMergesNormalizedLabels(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture(t)
	owner := f.register(t, "o@x.com")

	photo, err := f.photos.Create(ctx, owner.ID, services.CreatePhotoParams{URI: "file:///p.jpg"})
	require.NoError(t, err)

	cls := &fakeClassifier{result: []string{"golden retriever", "dog", "umbrella"}}
	enricher := services.NewEnricher(cls, f.photos, 8)
	enricher.Start(ctx, 1)
	defer enricher.Close()

	waitDone(t, enricher.Enqueue(owner.ID, photo.ID, "https://img.example/p.jpg"))

	got, err := f.photos.GetByID(ctx, owner.ID, owner.ID, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a dog", "an umbrella"}, got.Labels)
}

func TestEnricherAtMostOncePerPhoto(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture(t)
	owner := f.register(t, "o@x.com")

	photo, err := f.photos.Create(ctx, owner.ID, services.CreatePhotoParams{URI: "file:///p.jpg"})
	require.NoError(t, err)

	cls := &fakeClassifier{result: []string{"cat"}}
	enricher := services.NewEnricher(cls, f.photos, 8)
	enricher.Start(ctx, 1)
	defer enricher.Close()

	waitDone(t, enricher.Enqueue(owner.ID, photo.ID, "https://img.example/p.jpg"))
	waitDone(t, enricher.Enqueue(owner.ID, photo.ID, "https://img.example/p.jpg"))

	assert.Equal(t, 1, cls.callCount())
}

func TestEnricherSwallowsClassifierFailure(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture(t)
	owner := f.register(t, "o@x.com")

	photo, err := f.photos.Create(ctx, owner.ID, services.CreatePhotoParams{URI: "file:///p.jpg"})
	require.NoError(t, err)

	// the failure sentinel must not end up in the label set
	cls := &fakeClassifier{result: []string{"unknown"}}
	enricher := services.NewEnricher(cls, f.photos, 8)
	enricher.Start(ctx, 1)
	defer enricher.Close()

	waitDone(t, enricher.Enqueue(owner.ID, photo.ID, "https://img.example/p.jpg"))

	got, err := f.photos.GetByID(ctx, owner.ID, owner.ID, photo.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Labels)
}

func TestCreateWithRemoteURITriggersEnrichment(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture(t)
	owner := f.register(t, "o@x.com")

	cls := &fakeClassifier{result: []string{"daisy"}}
	enricher := services.NewEnricher(cls, f.photos, 8)
	enricher.Start(ctx, 1)
	defer enricher.Close()
	f.photos.AttachEnricher(enricher)

	events, cancel := f.hub.SubscribeUser(owner.ID)
	defer cancel()

	photo, err := f.photos.Create(ctx, owner.ID, services.CreatePhotoParams{
		URI: "https://img.example/remote.jpg",
	})
	require.NoError(t, err)
	assert.Empty(t, photo.Labels, "creator observes the pre-enrichment record")

	select {
	case event := <-events:
		assert.Equal(t, services.EventPhotoUpdated, event.Type)
		assert.Equal(t, photo.ID, event.PhotoID)
		assert.Equal(t, []string{"a flower"}, event.Labels)
	case <-time.After(5 * time.Second):
		t.Fatal("no enrichment event")
	}
}

func TestCreateWithLocalURISkipsEnrichment(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture(t)
	owner := f.register(t, "o@x.com")

	cls := &fakeClassifier{result: []string{"daisy"}}
	enricher := services.NewEnricher(cls, f.photos, 8)
	enricher.Start(ctx, 1)
	f.photos.AttachEnricher(enricher)

	photo, err := f.photos.Create(ctx, owner.ID, services.CreatePhotoParams{
		URI: "file:///tmp/local.jpg",
	})
	require.NoError(t, err)

	enricher.Close() // drain
	assert.Equal(t, 0, cls.callCount())

	got, err := f.photos.GetByID(ctx, owner.ID, owner.ID, photo.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Labels)
}
