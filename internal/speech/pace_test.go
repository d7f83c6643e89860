package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzePaceEmpty(t *testing.T) {
	metrics := AnalyzePace(nil)
	assert.Zero(t, metrics.SpeakingPaceWPM)
	assert.Zero(t, metrics.PauseCount)
	assert.NotNil(t, metrics.FillerWordsFound)
}

func TestAnalyzePaceWPM(t *testing.T) {
	// 10 words over 4 seconds = 150 wpm
	words := make([]Word, 10)
	for i := range words {
		start := float64(i) * 0.4
		words[i] = Word{Word: "word", Start: start, End: start + 0.4}
	}
	metrics := AnalyzePace(words)
	assert.Equal(t, 150, metrics.SpeakingPaceWPM)
	assert.Equal(t, 4.0, metrics.TotalDurationSeconds)
	assert.Zero(t, metrics.PauseCount)
}

func TestAnalyzePaceFillerWords(t *testing.T) {
	words := []Word{
		{Word: "Um,", Start: 0, End: 0.2},
		{Word: "I", Start: 0.2, End: 0.3},
		{Word: "would", Start: 0.3, End: 0.5},
		{Word: "basically", Start: 0.5, End: 0.9},
		{Word: "sort", Start: 0.9, End: 1.1},
		{Word: "the", Start: 1.1, End: 1.2},
		{Word: "array", Start: 1.2, End: 1.5},
	}
	metrics := AnalyzePace(words)
	assert.Equal(t, 2, metrics.FillerWordCount)
	assert.Equal(t, []string{"um", "basically"}, metrics.FillerWordsFound)
}

func TestAnalyzePacePauses(t *testing.T) {
	words := []Word{
		{Word: "first", Start: 0, End: 0.5},
		{Word: "then", Start: 2.0, End: 2.4}, // 1.5s gap
		{Word: "next", Start: 2.6, End: 3.0}, // 0.2s gap, not a pause
		{Word: "done", Start: 5.0, End: 5.4}, // 2.0s gap
	}
	metrics := AnalyzePace(words)
	assert.Equal(t, 2, metrics.PauseCount)
	// (1.5 + 2.0) / 2 rounded to one decimal
	assert.Equal(t, 1.8, metrics.AvgPauseDuration)
}
