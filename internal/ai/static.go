package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

var axisStrengths = map[scoring.Axis]string{
	scoring.Realistic:     "working hands-on and making things that actually function",
	scoring.Investigative: "digging into problems until they make sense",
	scoring.Artistic:      "imagining things that do not exist yet",
	scoring.Social:        "understanding and lifting up the people around you",
	scoring.Enterprising:  "taking the lead and getting others on board",
	scoring.Conventional:  "bringing order and reliability to complex work",
}

var traitLines = map[scoring.Tag]string{
	scoring.TagHigh:    "Your follow-through is a real asset in demanding programs.",
	scoring.TagAverage: "You balance structure with flexibility.",
	scoring.TagLow:     "You do your best work when there is room to explore.",
}

// Static builds the summary from the profile alone. It never fails and is
// deterministic for a given input.
type Static struct{}

func (Static) Summarize(_ context.Context, in SummaryInput) (string, error) {
	var parts []string

	opener := "You"
	if name := strings.TrimSpace(in.FirstName); name != "" {
		opener = name + ", you"
	}

	top := topAxes(in.Riasec, 2)
	switch len(top) {
	case 0:
		parts = append(parts, opener+" have interests that span many directions.")
	case 1:
		parts = append(parts, fmt.Sprintf("%s shine at %s.", opener, axisStrengths[top[0]]))
	default:
		parts = append(parts, fmt.Sprintf("%s shine at %s, and at %s.", opener, axisStrengths[top[0]], axisStrengths[top[1]]))
	}

	if t := in.Personality.Conscientiousness.Tag; t != nil {
		if line, ok := traitLines[*t]; ok {
			parts = append(parts, line)
		}
	}

	if len(in.Matches) > 0 {
		m := in.Matches[0]
		parts = append(parts, fmt.Sprintf("%s at %s is your strongest fit at %d%%.", m.ProgramName, m.UniversityName, m.MatchPercentage))
	}
	return strings.Join(parts, " "), nil
}

// topAxes returns up to n scored axes, highest first. Ties keep canonical
// RIASEC order.
func topAxes(r scoring.Riasec, n int) []scoring.Axis {
	type scored struct {
		axis  scoring.Axis
		score float64
	}
	var all []scored
	for _, a := range scoring.Axes {
		if v := r.Get(a); v != nil {
			all = append(all, scored{a, *v})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	out := make([]scoring.Axis, 0, n)
	for i := 0; i < len(all) && i < n; i++ {
		out = append(out, all[i].axis)
	}
	return out
}
