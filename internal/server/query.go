package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/types"
)

// parseSearchOptions reads limit and filter query parameters. List parameters
// accept repeated keys and comma-separated values.
func parseSearchOptions(q url.Values) (matching.SearchOptions, error) {
	var opts matching.SearchOptions

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return opts, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"}
		}
		opts.Limit = limit
	}

	f := &types.SearchFilters{
		Keywords:      listParam(q, "keywords"),
		Education:     listParam(q, "education"),
		Country:       listParam(q, "country"),
		PositionLevel: listParam(q, "position_level"),
	}

	var err error
	if f.MinYearsExperience, err = floatParam(q, "min_years_experience"); err != nil {
		return opts, err
	}
	if f.MaxYearsExperience, err = floatParam(q, "max_years_experience"); err != nil {
		return opts, err
	}
	if v := q.Get("sponsorship"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &ErrValidation{Field: "sponsorship", Message: "must be a boolean"}
		}
		f.Sponsorship = &b
	}

	if !f.IsEmpty() {
		opts.Filters = f
	}
	return opts, nil
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, &ErrValidation{Field: key, Message: "must be a non-negative number"}
	}
	return &f, nil
}

// peerIDs reads the peer_ids parameter, preserving order.
func peerIDs(q url.Values) []string {
	return listParam(q, "peer_ids")
}
