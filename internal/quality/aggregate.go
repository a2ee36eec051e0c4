package quality

import "strconv"

// Rate is a count of flagged rows out of a total.
type Rate struct {
	Count int
	Total int
}

// Value returns Count/Total. ok is false when Total is zero, in which case the
// rate is not applicable and the value is 0.
func (r Rate) Value() (value float64, ok bool) {
	if r.Total == 0 {
		return 0, false
	}
	return float64(r.Count) / float64(r.Total), true
}

// String formats the rate with four decimals, or "NA" for an empty corpus.
func (r Rate) String() string {
	v, ok := r.Value()
	if !ok {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// CorpusStats aggregates RowFlags over a whole dataset.
type CorpusStats struct {
	Total             int
	Empty             Rate
	Copy              Rate
	SourceEcho        Rate
	Hallucination     Rate
	Repetition        Rate
	SameLangSource    Rate
	SameLangReference Rate

	overlapSum float64
}

// MeanOverlap is the average translation/reference token overlap; ok is false
// for an empty corpus.
func (s CorpusStats) MeanOverlap() (float64, bool) {
	if s.Total == 0 {
		return 0, false
	}
	return s.overlapSum / float64(s.Total), true
}

// Metric pairs a stable metric name with its rate.
type Metric struct {
	Name string
	Rate Rate
}

// Metrics lists the rates in output order.
func (s CorpusStats) Metrics() []Metric {
	return []Metric{
		{"empty", s.Empty},
		{"copy", s.Copy},
		{"source_echo", s.SourceEcho},
		{"hallucination", s.Hallucination},
		{"repetition", s.Repetition},
		{"same_lang_source", s.SameLangSource},
		{"same_lang_reference", s.SameLangReference},
	}
}

// Aggregate counts every flag category in a single pass. An empty input gives
// zero counts and not-applicable rates.
func Aggregate(flags []RowFlags) CorpusStats {
	s := CorpusStats{Total: len(flags)}
	for _, f := range flags {
		countIf(&s.Empty, f.Empty)
		countIf(&s.Copy, f.Copy)
		countIf(&s.SourceEcho, f.SourceEcho)
		countIf(&s.Hallucination, f.Hallucination)
		countIf(&s.Repetition, f.Repetition)
		countIf(&s.SameLangSource, f.SameLangAsSource)
		countIf(&s.SameLangReference, f.SameLangAsReference)
		s.overlapSum += f.Overlap
	}
	for _, r := range []*Rate{&s.Empty, &s.Copy, &s.SourceEcho, &s.Hallucination,
		&s.Repetition, &s.SameLangSource, &s.SameLangReference} {
		r.Total = s.Total
	}
	return s
}

func countIf(r *Rate, flagged bool) {
	if flagged {
		r.Count++
	}
}
