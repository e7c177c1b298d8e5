package protocol

import (
	"fmt"
	"sort"

	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
)

type Result struct {
	ProtocolID      string   `json:"protocol_id"`
	Total           float64  `json:"total"`
	Classification  string   `json:"classification"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// Score sums the item scores of a catalog protocol and classifies the total.
func Score(protocolID string, scores map[string]float64) (*Result, error) {
	p, err := Lookup(protocolID)
	if err != nil {
		return nil, err
	}
	return score(p, scores)
}

func score(p Protocol, scores map[string]float64) (*Result, error) {
	fe := fielderr.New()
	items := make(map[string]Item, len(p.Items))
	for _, it := range p.Items {
		items[it.ID] = it
	}

	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		v := scores[k]
		it, ok := items[k]
		if !ok {
			fe.Add(k, "unknown item")
			continue
		}
		if !onScale(it, v) {
			fe.Add(k, fmt.Sprintf("must be between %g and %g in steps of %g", it.Min, it.Max, it.Step))
			continue
		}
		total += v
	}
	for _, it := range p.Items {
		if _, ok := scores[it.ID]; !ok {
			fe.Add(it.ID, "is required")
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	band, ok := classify(p, total)
	if !ok {
		return nil, fmt.Errorf("%w: %g", ErrTotalOutOfRange, total)
	}
	return &Result{
		ProtocolID:      p.ID,
		Total:           total,
		Classification:  band.Label,
		Description:     band.Description,
		Recommendations: Recommendations(p.ID, band.Label),
	}, nil
}

// classify picks the band whose inclusive range contains total.
func classify(p Protocol, total float64) (Band, bool) {
	for _, b := range p.Bands {
		if total >= b.Min-epsilon && total <= b.Max+epsilon {
			return b, true
		}
	}
	return Band{}, false
}
