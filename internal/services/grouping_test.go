package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/services"
)

func photoAt(id string, ts time.Time, photoType models.PhotoType, labels ...string) models.Photo {
	return models.Photo{
		ID:        id,
		Timestamp: ts,
		Type:      photoType,
		Labels:    labels,
	}
}

func TestGroupByDate(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	day1Later := time.Date(2026, 8, 1, 21, 30, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)

	groups := services.GroupByDate([]models.Photo{
		photoAt("1", day1, models.PhotoTypeCaptured),
		photoAt("2", day1Later, models.PhotoTypeCaptured),
		photoAt("3", day2, models.PhotoTypeCaptured),
	})

	require.Len(t, groups, 2)
	assert.Len(t, groups["2026-08-01"], 2)
	assert.Len(t, groups["2026-08-02"], 1)
}

func TestGroupByType(t *testing.T) {
	now := time.Now()
	groups := services.GroupByType([]models.Photo{
		photoAt("1", now, models.PhotoTypeSelfie),
		photoAt("2", now, models.PhotoTypeSelfie),
		photoAt("3", now, models.PhotoTypeImported),
	})

	require.Len(t, groups, 2)
	assert.Len(t, groups["selfie"], 2)
	assert.Len(t, groups["imported"], 1)
}

func TestGroupByLabelFansOut(t *testing.T) {
	now := time.Now()
	multi := photoAt("1", now, models.PhotoTypeCaptured, "a", "b")
	unlabeled := photoAt("2", now, models.PhotoTypeCaptured)

	groups := services.GroupByLabel([]models.Photo{multi, unlabeled})

	// a photo with several labels appears under each of them
	require.Contains(t, groups, "a")
	require.Contains(t, groups, "b")
	assert.Equal(t, "1", groups["a"][0].ID)
	assert.Equal(t, "1", groups["b"][0].ID)

	// an unlabeled photo lands only in the synthetic unknown bucket
	require.Contains(t, groups, "unknown")
	assert.Equal(t, "2", groups["unknown"][0].ID)
	assert.Len(t, groups, 3)
}
