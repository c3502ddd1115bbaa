package store

import "math"

const (
	MinLimit = 1
	MaxLimit = 100

	MinIndexRows  = 100
	MinIndexLists = 10
	MaxIndexLists = 1000
)

// ClampPage bounds limit to [MinLimit, MaxLimit] and offset to >= 0.
func ClampPage(limit int, offset int) (int, int) {
	if limit < MinLimit {
		limit = MinLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// IndexLists derives the ivfflat list count from the number of embedded rows.
func IndexLists(embedded int) int {
	lists := int(math.Sqrt(float64(embedded)))
	if lists < MinIndexLists {
		return MinIndexLists
	}
	if lists > MaxIndexLists {
		return MaxIndexLists
	}
	return lists
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Window returns the [start, end) slice bounds of a page over n ordered items.
func Window(n int, limit int, offset int) (int, int) {
	if offset >= n {
		return n, n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
