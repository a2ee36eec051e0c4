package quality

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekknuf/teatool/internal/dataset"
)

func TestAggregateExampleCorpus(t *testing.T) {
	rows := []dataset.Row{
		row("hello world", "hello world", "bonjour monde"),
		row("hi", "", "salut"),
		row("ok", "ok fine", "ok fine, agreed"),
	}
	stats := Aggregate(ComputeAll(rows, noLang()))

	require.Equal(t, 3, stats.Total)
	assert.Equal(t, Rate{Count: 1, Total: 3}, stats.Empty)
	assert.Equal(t, Rate{Count: 1, Total: 3}, stats.Copy)

	v, ok := stats.Empty.Value()
	require.True(t, ok)
	assert.InDelta(t, 1.0/3.0, v, 1e-12)
	assert.Equal(t, "0.3333", stats.Copy.String())

	mean, ok := stats.MeanOverlap()
	require.True(t, ok)
	assert.InDelta(t, (0+0+2.0/3.0)/3, mean, 1e-12)
}

func TestAggregateEmptyRateMatchesCount(t *testing.T) {
	rows := []dataset.Row{
		row("a", " ", "x"),
		row("b", "y", "y"),
		row("c", "", "z"),
		row("d", "w", "w"),
		row("e", "\t", "v"),
	}
	flags := ComputeAll(rows, noLang())
	stats := Aggregate(flags)

	empty := 0
	for _, f := range flags {
		if f.Empty {
			empty++
		}
	}
	v, ok := stats.Empty.Value()
	require.True(t, ok)
	assert.Equal(t, 3, empty)
	assert.InDelta(t, float64(empty)/float64(len(rows)), v, 1e-12)
}

func TestAggregateEmptyDataset(t *testing.T) {
	stats := Aggregate(nil)

	assert.Zero(t, stats.Total)
	for _, m := range stats.Metrics() {
		v, ok := m.Rate.Value()
		assert.False(t, ok, m.Name)
		assert.Zero(t, v, m.Name)
		assert.Equal(t, "NA", m.Rate.String(), m.Name)
	}
	_, ok := stats.MeanOverlap()
	assert.False(t, ok)
}

func TestMetricsOrder(t *testing.T) {
	stats := Aggregate([]RowFlags{{Empty: true}, {Hallucination: true, SameLangAsReference: true}})

	want := []Metric{
		{"empty", Rate{1, 2}},
		{"copy", Rate{0, 2}},
		{"source_echo", Rate{0, 2}},
		{"hallucination", Rate{1, 2}},
		{"repetition", Rate{0, 2}},
		{"same_lang_source", Rate{0, 2}},
		{"same_lang_reference", Rate{1, 2}},
	}
	if diff := cmp.Diff(want, stats.Metrics()); diff != "" {
		t.Errorf("Metrics() mismatch (-want +got):\n%s", diff)
	}
}
