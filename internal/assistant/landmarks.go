package assistant

import (
	"fmt"
	"strings"

	"github.com/jelajah/jelajah-api/internal/types"
)

type landmarkInfo struct {
	name     string
	location string
	category string
}

// landmarkIndex maps caption keywords to well-known Indonesian landmarks.
var landmarkIndex = []struct {
	keyword string
	info    landmarkInfo
}{
	{"monas", landmarkInfo{"Monumen Nasional", "Jakarta", "monument"}},
	{"borobudur", landmarkInfo{"Candi Borobudur", "Yogyakarta", "temple"}},
	{"prambanan", landmarkInfo{"Candi Prambanan", "Yogyakarta", "temple"}},
	{"uluwatu", landmarkInfo{"Pura Uluwatu", "Bali", "temple"}},
	{"bromo", landmarkInfo{"Gunung Bromo", "Jawa Timur", "mountain"}},
	{"toba", landmarkInfo{"Danau Toba", "Sumatera Utara", "lake"}},
}

// DetectLandmarks matches an image caption against the landmark index. A
// caption with no known keyword still yields a generic low-confidence entry
// so the adapter can return a usable result.
func DetectLandmarks(caption string) *types.VisionResult {
	lower := strings.ToLower(caption)

	var detected []types.Landmark
	for _, entry := range landmarkIndex {
		if strings.Contains(lower, entry.keyword) {
			detected = append(detected, types.Landmark{
				Name:        entry.info.name,
				Description: fmt.Sprintf("Landmark terkenal di %s", entry.info.location),
				Location:    entry.info.location,
				Category:    entry.info.category,
				Confidence:  0.7,
			})
		}
	}
	if len(detected) == 0 {
		detected = append(detected, types.Landmark{
			Name:        "Tempat wisata Indonesia",
			Description: "Lokasi wisata yang menarik di Indonesia",
			Location:    "Indonesia",
			Category:    "tourism",
			Confidence:  0.4,
		})
	}

	confidence := 0.0
	for _, l := range detected {
		if l.Confidence > confidence {
			confidence = l.Confidence
		}
	}

	return &types.VisionResult{
		Landmarks:  detected,
		Summary:    fmt.Sprintf("Terdeteksi %d landmark dalam gambar", len(detected)),
		Confidence: confidence,
	}
}
