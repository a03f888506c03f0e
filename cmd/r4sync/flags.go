package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// windowFlags holds the extraction-window flags shared by the
// source-reading commands.
type windowFlags struct {
	fromCode int
	toCode   int
	fromDate string
	toDate   string
}

func (wf *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&wf.fromCode, "from-code", 0,
		"lowest legacy patient code, inclusive (0 = unbounded)")
	cmd.Flags().IntVar(&wf.toCode, "to-code", 0,
		"highest legacy patient code, inclusive (0 = unbounded)")
	cmd.Flags().StringVar(&wf.fromDate, "from-date", "",
		"earliest record date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&wf.toDate, "to-date", "",
		"record date upper bound, exclusive (YYYY-MM-DD)")
}

func (wf *windowFlags) window() (r4.Window, error) {
	w := r4.Window{FromCode: wf.fromCode, ToCode: wf.toCode}

	var err error
	if wf.fromDate != "" {
		w.From, err = time.Parse(dateLayout, wf.fromDate)
		if err != nil {
			return w, fmt.Errorf(
				"bad --from-date %q, want YYYY-MM-DD", wf.fromDate)
		}
	}
	if wf.toDate != "" {
		w.To, err = time.Parse(dateLayout, wf.toDate)
		if err != nil {
			return w, fmt.Errorf(
				"bad --to-date %q, want YYYY-MM-DD", wf.toDate)
		}
	}
	return w, nil
}

// parseDomains turns a comma-separated list into charting domains.
// An empty list means every domain.
func parseDomains(csv string) ([]r4.Domain, error) {
	if strings.TrimSpace(csv) == "" {
		return r4.Domains(), nil
	}
	var res []r4.Domain
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		d, ok := r4.ParseDomain(s)
		if !ok {
			return nil, fmt.Errorf(
				"unknown charting domain %q, known domains: %s",
				s, joinDomains(r4.Domains()))
		}
		res = append(res, d)
	}
	return res, nil
}

func joinDomains(ds []r4.Domain) string {
	strs := make([]string, len(ds))
	for i, d := range ds {
		strs[i] = string(d)
	}
	return strings.Join(strs, ", ")
}

// parseEntities turns a comma-separated list into entity types,
// preserving dependency order. An empty list means every entity.
func parseEntities(csv string) ([]r4.EntityType, error) {
	all := r4.EntityTypes()
	if strings.TrimSpace(csv) == "" {
		return all, nil
	}

	wanted := make(map[r4.EntityType]bool)
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		found := false
		for _, e := range all {
			if string(e) == s {
				wanted[e] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown entity type %q", s)
		}
	}

	var res []r4.EntityType
	for _, e := range all {
		if wanted[e] {
			res = append(res, e)
		}
	}
	return res, nil
}

// parseCodes turns a comma-separated list into legacy patient codes.
func parseCodes(csv string) ([]int, error) {
	var res []int
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		code, err := strconv.Atoi(s)
		if err != nil || code <= 0 {
			return nil, fmt.Errorf("bad patient code %q", s)
		}
		res = append(res, code)
	}
	return res, nil
}
