// Package speech covers the audio edge of the interview: transcription of
// candidate recordings, synthesis of the interviewer's voice, and pace
// analysis over word timings.
package speech

import (
	"bytes"
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Word is one transcribed word with its time span in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcription is the result of one audio clip.
type Transcription struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*Transcription, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Client implements both directions over an OpenAI-compatible audio API.
type Client struct {
	api *openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{api: openai.NewClient(apiKey)}
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (*Transcription, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   audio,
		FilePath: filename,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, err
	}
	result := Transcription{Transcript: resp.Text, Words: []Word{}}
	for _, w := range resp.Words {
		result.Words = append(result.Words, Word{Word: w.Word, Start: w.Start, End: w.End})
	}
	if len(resp.Segments) > 0 {
		// Whisper reports no direct confidence; approximate from avg logprob
		// of the first segment.
		result.Confidence = 1 + float64(resp.Segments[0].AvgLogprob)
		if result.Confidence < 0 {
			result.Confidence = 0
		}
		if result.Confidence > 1 {
			result.Confidence = 1
		}
	}
	return &result, nil
}

func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Voice: openai.VoiceAlloy,
		Input: text,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
