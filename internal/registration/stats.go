package registration

import (
	"context"
	"sort"
)

// ClassCount is one entry of the most-registered-classes table.
type ClassCount struct {
	ClassID    string `json:"classId"`
	ClassTitle string `json:"classTitle"`
	Count      int    `json:"count"`
}

// Stats are best-effort aggregates over a bounded sample, same discipline
// as the catalog statistics: approximate beyond the sample bound.
type Stats struct {
	Total          int            `json:"total"`
	ByStatus       map[Status]int `json:"byStatus"`
	TotalRevenue   float64        `json:"totalRevenue"`
	PendingRevenue float64        `json:"pendingRevenue"`
	TopClasses     []ClassCount   `json:"topClasses"`
	SampleLimit    int            `json:"sampleLimit"`
}

const topClassesLimit = 5

// Stats aggregates status counts, collected and outstanding revenue and
// the top-5 most-registered classes. Revenue comes from the payment
// sub-records: collected is the sum of paid amounts; outstanding is what
// remains unpaid on registrations still in play (pending or approved).
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	regs, err := s.col.GetLimited(ctx, nil, nil, s.sampleLimit)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:       len(regs),
		ByStatus:    make(map[Status]int),
		SampleLimit: s.sampleLimit,
	}

	type classKey struct{ id, title string }
	classes := make(map[classKey]int)

	for _, reg := range regs {
		stats.ByStatus[reg.Status]++
		stats.TotalRevenue += reg.Payment.PaidAmount
		if reg.Status == StatusPending || reg.Status == StatusApproved {
			stats.PendingRevenue += reg.Payment.TotalAmount - reg.Payment.PaidAmount
		}
		classes[classKey{reg.ClassID, reg.ClassTitle}]++
	}

	ranked := make([]ClassCount, 0, len(classes))
	for key, count := range classes {
		ranked = append(ranked, ClassCount{ClassID: key.id, ClassTitle: key.title, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ClassID < ranked[j].ClassID
	})
	if len(ranked) > topClassesLimit {
		ranked = ranked[:topClassesLimit]
	}
	stats.TopClasses = ranked

	return stats, nil
}
