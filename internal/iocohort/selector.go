// Package iocohort implements the CohortSelector: deterministic,
// size-bounded selection of legacy patient codes for repeatable
// parity and test runs.
package iocohort

import (
	"context"
	"sort"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
)

type selector struct {
	ext r4sync.Extractor
}

// New creates a CohortSelector.
func New(ext r4sync.Extractor) r4sync.CohortSelector {
	return &selector{ext: ext}
}

// SelectCohort returns the sorted legacy patient codes with in-window
// data in the requested domains, combined by union or intersection and
// truncated to limit. Identical inputs always produce identical
// output; parity artifacts are diffed across runs and depend on it.
func (s *selector) SelectCohort(
	ctx context.Context,
	domains []r4.Domain,
	w r4.Window,
	mode r4sync.CohortMode,
	limit int,
) ([]int, error) {
	if len(domains) == 0 {
		domains = r4.Domains()
	}

	// seen counts how many of the requested domains each code has
	// data in; intersection demands all of them.
	seen := make(map[int]int)
	for _, d := range domains {
		codes, err := s.ext.PatientCodes(ctx, d, w)
		if err != nil {
			return nil, QueryError(string(d), err)
		}
		for _, code := range codes {
			seen[code]++
		}
	}

	need := 1
	if mode == r4sync.CohortIntersection {
		need = len(domains)
	}

	cohort := make([]int, 0, len(seen))
	for code, n := range seen {
		if n >= need {
			cohort = append(cohort, code)
		}
	}
	sort.Ints(cohort)

	if limit > 0 && len(cohort) > limit {
		cohort = cohort[:limit]
	}
	return cohort, nil
}
