package repository

import "github.com/bowr/streamear/pkg/model"

// StatusAll is the synthetic summary key holding the total count
const StatusAll model.Status = "all"

// NormalizeStatuses lowercases every seed status in place
func NormalizeStatuses(seeds []*model.Seed) {
	for _, s := range seeds {
		s.Status = s.Status.Normalize()
	}
}

// FilterByStatus returns the seeds whose normalized status equals status, or
// all seeds when status is empty.
func FilterByStatus(seeds []*model.Seed, status model.Status) []*model.Seed {
	NormalizeStatuses(seeds)
	if status == "" || status == StatusAll {
		return seeds
	}

	want := status.Normalize()
	filtered := make([]*model.Seed, 0, len(seeds))
	for _, s := range seeds {
		if s.Status == want {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// CountByStatus returns the number of seeds per normalized status plus StatusAll
func CountByStatus(seeds []*model.Seed) map[model.Status]int {
	NormalizeStatuses(seeds)
	counts := map[model.Status]int{StatusAll: len(seeds)}
	for _, s := range seeds {
		counts[s.Status]++
	}
	return counts
}
