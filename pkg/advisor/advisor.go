// Package advisor evaluates a race setup against an embedded rego policy and
// reports warnings and recommendations.
package advisor

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"slices"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage/inmem"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

// DefaultRecommendation is reported if the policy has no recommendation.
const DefaultRecommendation = "setup looks well-optimized for this track"

type (
	Advisor struct {
		query rego.PreparedEvalQuery
		l     *log.Logger
	}
	Advice struct {
		Warnings        []string `json:"warnings"`
		Recommendations []string `json:"recommendations"`
	}
	// Setup is the input of the policy. Performance is optional.
	Setup struct {
		Car         *model.Car         `json:"car"`
		Track       *model.Track       `json:"track"`
		Strategy    *model.Strategy    `json:"strategy"`
		Performance *model.Performance `json:"performance,omitempty"`
	}
)

//go:embed policy.rego
var policy []byte

//go:embed data.json
var data []byte

func New() (*Advisor, error) {
	l := log.Default().Named("advisor")
	store := inmem.NewFromReader(bytes.NewReader(data))
	r := rego.New(
		rego.Query("warnings = data.rss.advice.warnings; "+
			"recommendations = data.rss.advice.recommendations"),
		rego.Module("rss.advice", string(policy)),
		rego.Store(store),
	)
	if query, err := r.PrepareForEval(context.Background()); err != nil {
		l.Error("failed to prepare query", log.ErrorField(err))
		return nil, err
	} else {
		return &Advisor{query: query, l: l}, nil
	}
}

func (a *Advisor) Advise(ctx context.Context, setup *Setup) (*Advice, error) {
	rs, err := a.query.Eval(ctx, rego.EvalInput(setup))
	if err != nil {
		a.l.Error("Advise", log.ErrorField(err))
		return nil, err
	}
	if len(rs) == 0 {
		return nil, fmt.Errorf("advisor: policy returned no result")
	}
	ret := &Advice{
		Warnings:        toStrings(rs[0].Bindings["warnings"]),
		Recommendations: toStrings(rs[0].Bindings["recommendations"]),
	}
	if setup.Performance != nil && len(ret.Recommendations) == 0 {
		ret.Recommendations = []string{DefaultRecommendation}
	}
	a.l.Debug("advice", log.Any("advice", ret))
	return ret, nil
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	ret := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			ret = append(ret, s)
		}
	}
	slices.Sort(ret)
	return ret
}
