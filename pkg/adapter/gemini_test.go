package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/bowr/streamear/pkg/adapter"
	"github.com/m-mizutani/gt"
)

func TestGeminiTranscribe(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	audioPath := os.Getenv("TEST_GEMINI_AUDIO_FILE")
	if projectID == "" || audioPath == "" {
		t.Skip("TEST_GEMINI_PROJECT and TEST_GEMINI_AUDIO_FILE must be set")
	}

	location := os.Getenv("TEST_GEMINI_LOCATION")
	if location == "" {
		location = "us-central1"
	}

	audio, err := os.ReadFile(audioPath)
	gt.NoError(t, err)

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, projectID, location)
	gt.NoError(t, err)

	text, err := client.Transcribe(ctx, audio, "audio/wav")
	gt.NoError(t, err)
	t.Logf("transcript: %s", text)
}

func TestGeminiTranscribeEmptyAudio(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, projectID, "us-central1")
	gt.NoError(t, err)

	_, err = client.Transcribe(ctx, nil, "audio/wav")
	gt.Error(t, err)
}
