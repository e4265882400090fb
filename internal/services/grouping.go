package services

import (
	"photo-journal-backend/internal/labels"
	"photo-journal-backend/internal/models"
)

// Grouping helpers for the presentation layers. All pure, no I/O.

// GroupByDate partitions photos by calendar day, keyed "YYYY-MM-DD".
func GroupByDate(photos []models.Photo) map[string][]models.Photo {
	out := make(map[string][]models.Photo)
	for _, p := range photos {
		key := p.Timestamp.Format("2006-01-02")
		out[key] = append(out[key], p)
	}
	return out
}

// GroupByType partitions photos by their capture type.
func GroupByType(photos []models.Photo) map[string][]models.Photo {
	out := make(map[string][]models.Photo)
	for _, p := range photos {
		key := string(p.Type)
		out[key] = append(out[key], p)
	}
	return out
}

// GroupByLabel buckets photos by label. This is a fan-out, not a partition:
// a photo with several labels appears under every one of them. A photo with
// no labels lands in the synthetic "unknown" bucket.
func GroupByLabel(photos []models.Photo) map[string][]models.Photo {
	out := make(map[string][]models.Photo)
	for _, p := range photos {
		if len(p.Labels) == 0 {
			out[labels.UnknownLabel] = append(out[labels.UnknownLabel], p)
			continue
		}
		for _, label := range p.Labels {
			out[label] = append(out[label], p)
		}
	}
	return out
}
