package speech

import (
	"math"
	"strings"
)

// PaceMetrics summarizes delivery quality of one answer.
type PaceMetrics struct {
	SpeakingPaceWPM      int      `json:"speaking_pace_wpm"`
	FillerWordCount      int      `json:"filler_word_count"`
	FillerWordsFound     []string `json:"filler_words_found"`
	TotalDurationSeconds float64  `json:"total_duration_seconds"`
	PauseCount           int      `json:"pause_count"`
	AvgPauseDuration     float64  `json:"avg_pause_duration"`
}

var fillerWords = map[string]bool{
	"um": true, "uh": true, "like": true, "you know": true, "basically": true,
	"actually": true, "so": true, "well": true, "i mean": true, "right": true,
	"okay": true,
}

// AnalyzePace computes pace, filler census, and pauses from word timings.
// A pause is a gap of more than one second between consecutive words.
func AnalyzePace(words []Word) PaceMetrics {
	metrics := PaceMetrics{FillerWordsFound: []string{}}
	if len(words) == 0 {
		return metrics
	}

	duration := words[len(words)-1].End - words[0].Start
	metrics.TotalDurationSeconds = math.Round(duration*10) / 10
	if duration > 0 {
		metrics.SpeakingPaceWPM = int(math.Round(float64(len(words)) / duration * 60))
	}

	for _, w := range words {
		text := strings.Trim(strings.ToLower(w.Word), ".,!?")
		if fillerWords[text] {
			metrics.FillerWordsFound = append(metrics.FillerWordsFound, text)
		}
	}
	metrics.FillerWordCount = len(metrics.FillerWordsFound)

	var pauseTotal float64
	for i := 1; i < len(words); i++ {
		gap := words[i].Start - words[i-1].End
		if gap > 1.0 {
			metrics.PauseCount++
			pauseTotal += gap
		}
	}
	if metrics.PauseCount > 0 {
		metrics.AvgPauseDuration = math.Round(pauseTotal/float64(metrics.PauseCount)*10) / 10
	}
	return metrics
}
