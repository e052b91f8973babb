package catalog

import (
	"context"
	"sort"
	"time"
)

// SubjectCount is one entry of the subject frequency table.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// Stats are best-effort aggregates computed in memory over a bounded
// sample of the collection. For collections larger than the sample bound
// they are approximations, not true full-collection aggregates.
type Stats struct {
	Total             int            `json:"total"`
	Active            int            `json:"active"`
	AveragePrice      float64        `json:"averagePrice"`
	TopSubjects       []SubjectCount `json:"topSubjects"`
	CreatedLast30Days int            `json:"createdLast30Days"`
	SampleLimit       int            `json:"sampleLimit"`
}

const topSubjectsLimit = 5

// Stats fetches up to the sample bound and aggregates counts, mean price,
// the top-5 subject tags and the trailing-30-day creation count.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	classes, err := s.col.GetLimited(ctx, nil, nil, s.sampleLimit)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:       len(classes),
		SampleLimit: s.sampleLimit,
	}

	subjects := make(map[string]int)
	cutoff := time.Now().AddDate(0, 0, -30)
	var priceSum float64

	for _, class := range classes {
		if class.IsActive {
			stats.Active++
		}
		priceSum += class.Price
		for _, subject := range class.Subjects {
			subjects[subject]++
		}
		if class.CreatedAt.After(cutoff) {
			stats.CreatedLast30Days++
		}
	}

	if len(classes) > 0 {
		stats.AveragePrice = priceSum / float64(len(classes))
	}
	stats.TopSubjects = topSubjects(subjects, topSubjectsLimit)

	return stats, nil
}

func topSubjects(counts map[string]int, limit int) []SubjectCount {
	ranked := make([]SubjectCount, 0, len(counts))
	for subject, count := range counts {
		ranked = append(ranked, SubjectCount{Subject: subject, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Subject < ranked[j].Subject
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
