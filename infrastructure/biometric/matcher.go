package biometric

import (
	"errors"
	"math"

	"mruput.io/infrastructure/biometric/types"
)

var ErrEmptyGallery = errors.New("no enrolled encodings to compare against")

// EuclideanDistance returns the L2 distance between two embeddings of equal length.
func EuclideanDistance(a, b types.FaceEmbedding) (float64, error) {
	if len(a) != len(b) {
		return 0, &types.DimensionMismatchError{Candidate: len(a), Enrolled: len(b)}
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Similarity maps a distance onto [0,1] with the linear 1 - distance rule.
func Similarity(distance float64) float64 {
	return math.Max(0, math.Min(1, 1-distance))
}

// Match compares a live embedding with an enrolled one. The caller owns the
// threshold; embeddings of different lengths are never truncated.
func Match(candidate, enrolled types.FaceEmbedding, threshold float64) (*types.SimilarityResult, error) {
	distance, err := EuclideanDistance(candidate, enrolled)
	if err != nil {
		return nil, err
	}
	return &types.SimilarityResult{
		Distance:   distance,
		Similarity: Similarity(distance),
		IsMatch:    distance < threshold,
	}, nil
}

// FindBestMatch returns the closest gallery entry. The second return value is
// false when the closest distance is not below threshold. Entries whose
// dimension differs from the candidate are skipped.
func FindBestMatch(candidate types.FaceEmbedding, gallery []types.GalleryEntry, threshold float64) (*types.BestMatch, bool, error) {
	if len(gallery) == 0 {
		return nil, false, ErrEmptyGallery
	}
	var best *types.BestMatch
	for _, entry := range gallery {
		distance, err := EuclideanDistance(candidate, entry.Encoding)
		if err != nil {
			continue
		}
		if best == nil || distance < best.Distance {
			best = &types.BestMatch{
				ID:         entry.ID,
				Distance:   distance,
				Confidence: Similarity(distance) * 100,
			}
		}
	}
	if best == nil {
		return nil, false, &types.DimensionMismatchError{Candidate: len(candidate), Enrolled: len(gallery[0].Encoding)}
	}
	return best, best.Distance < threshold, nil
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
