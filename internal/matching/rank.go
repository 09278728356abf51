package matching

import (
	"sort"
	"strings"
)

// ─── FILTERS ──────────────────────────────────────────────────────────────────

// widenIfEmpty returns strict unless it is empty, in which case it falls back
// to all.
func widenIfEmpty[T any](strict, all []T) []T {
	if len(strict) == 0 {
		return all
	}
	return strict
}

func filter(programs []Program, keep func(Program) bool) []Program {
	out := make([]Program, 0, len(programs))
	for _, p := range programs {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// byDegreeType keeps programs at one of the selected levels. No selection
// keeps everything; a selection nothing matches keeps nothing.
func byDegreeType(programs []Program, levels []string) []Program {
	if len(levels) == 0 {
		return programs
	}
	want := make(map[string]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}
	return filter(programs, func(p Program) bool { return want[p.DegreeLevel] })
}

// byDomain keeps programs in the target domain, widening to all of them when
// none match.
func byDomain(programs []Program, domain string) []Program {
	if domain == "" {
		return programs
	}
	strict := filter(programs, func(p Program) bool { return p.Domain == domain })
	return widenIfEmpty(strict, programs)
}

// ─── KEYWORDS ─────────────────────────────────────────────────────────────────

// KeywordBoost is (matched / total) × 10 × confidence for interest's keyword
// list against the program's searchable text. Unknown interests and empty
// keyword lists never boost.
func KeywordBoost(p Program, interest string, confidence float64) (float64, []string) {
	terms := keywords[interest]
	if len(terms) == 0 {
		return 0, []string{}
	}
	text := strings.ToLower(strings.Join([]string{p.Name, p.Discipline, p.Description, p.Field}, " "))
	matched := []string{}
	for _, k := range terms {
		if strings.Contains(text, strings.ToLower(k)) {
			matched = append(matched, k)
		}
	}
	return float64(len(matched)) / float64(len(terms)) * 10 * confidence, matched
}

// ─── PREREQUISITES ────────────────────────────────────────────────────────────

// CheckPrerequisites gates a program on budget and GPA. Either side unknown
// passes.
func CheckPrerequisites(p Program, budget, gpa *float64, flags []string) Prerequisite {
	tuition := p.ScoringData.Prerequisites.Tuition
	if tuition == nil || *tuition == 0 {
		tuition = p.TuitionUSD
	}
	budgetMet := budget == nil || tuition == nil || *tuition == 0 || *budget >= *tuition

	minGPA := p.ScoringData.Prerequisites.MinGPA
	gpaMet := gpa == nil || minGPA == nil || *minGPA == 0 || *gpa >= *minGPA

	if flags == nil {
		flags = []string{}
	}
	return Prerequisite{
		EssentialPass:     budgetMet && gpaMet,
		BudgetMet:         budgetMet,
		GPAMet:            gpaMet,
		NonEssentialFlags: flags,
	}
}

// selectTop orders candidates by score and picks n, preferring those that pass
// their essential prerequisites and padding with the best of the rest.
func selectTop(scored []Match, n int) []Match {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].DegreeScore > scored[j].DegreeScore
	})

	var accessible, inaccessible []Match
	for _, m := range scored {
		if m.EssentialPass {
			accessible = append(accessible, m)
		} else {
			inaccessible = append(inaccessible, m)
		}
	}

	out := make([]Match, 0, n)
	out = append(out, accessible[:min(n, len(accessible))]...)
	out = append(out, inaccessible[:min(n-len(out), len(inaccessible))]...)
	return out
}

// ─── VERDICT ──────────────────────────────────────────────────────────────────

const (
	verdictQualified = "Great news! Based on your profile, you meet all the requirements for this program. You're ready to apply!"
	verdictCaveats   = "You meet the core admission requirements for this program. Here are a few things to keep in mind: "
	verdictGoodFit   = "This program is a strong match for your interests and preferences, but there are some admission requirements to consider. I recommend speaking with one of our consultants to explore your options."
)

// Verdict picks one of three canned messages by essential pass and flags.
func Verdict(pr Prerequisite) string {
	if !pr.EssentialPass {
		return verdictGoodFit
	}
	if len(pr.NonEssentialFlags) == 0 {
		return verdictQualified
	}
	notes := make([]string, 0, len(pr.NonEssentialFlags))
	for _, f := range pr.NonEssentialFlags {
		if n, ok := flagNotes[f]; ok {
			notes = append(notes, n)
		} else {
			notes = append(notes, strings.ReplaceAll(f, "_", " "))
		}
	}
	return verdictCaveats + strings.Join(notes, "; ") + "."
}
