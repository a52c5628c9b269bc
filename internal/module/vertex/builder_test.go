package vertex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/veoflow/server/internal/shared/errors"
)

func descriptor(t *testing.T, id string) ModelDescriptor {
	t.Helper()
	m, err := LookupModel(id)
	require.NoError(t, err)
	return m
}

func TestLookupModel(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		wantID       string
		wantAudio    bool
		wantErr      bool
	}{
		{name: "veo 3", id: "veo-3.0-generate-001", wantID: "veo-3.0-generate-001", wantAudio: true},
		{name: "veo 3.1 fast", id: "veo-3.1-fast-generate-preview", wantID: "veo-3.1-fast-generate-preview", wantAudio: true},
		{name: "veo 2", id: "veo-2.0-generate-001", wantID: "veo-2.0-generate-001", wantAudio: false},
		{name: "empty defaults", id: "", wantID: DefaultModel, wantAudio: true},
		{name: "unknown", id: "veo-9.9-imaginary", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := LookupModel(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, m.ID)
			assert.Equal(t, tt.wantAudio, m.AudioCapable)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeTextToVideo, m)

	m, err = ParseMode("image-to-video")
	require.NoError(t, err)
	assert.Equal(t, ModeImageToVideo, m)

	_, err = ParseMode("audio-to-video")
	require.Error(t, err)
}

func textInput(t *testing.T) BuildInput {
	return BuildInput{
		Mode:          ModeTextToVideo,
		Model:         descriptor(t, "veo-3.0-generate-001"),
		Prompt:        "a red fox running through snow",
		Duration:      8,
		AspectRatio:   "16:9",
		Resolution:    "1080p",
		SampleCount:   1,
		EnhancePrompt: true,
		GenerateAudio: true,
	}
}

func TestBuildTextToVideo(t *testing.T) {
	req, err := BuildPredictionRequest(textInput(t))
	require.NoError(t, err)

	require.Len(t, req.Instances, 1)
	assert.Equal(t, "a red fox running through snow", req.Instances[0]["prompt"])

	assert.Equal(t, 8, req.Parameters["durationSeconds"])
	assert.Equal(t, "16:9", req.Parameters["aspectRatio"])
	assert.Equal(t, "1080p", req.Parameters["resolution"])
	assert.Equal(t, 1, req.Parameters["sampleCount"])
	assert.Equal(t, "optimized", req.Parameters["compressionQuality"])
	assert.Equal(t, true, req.Parameters["enhancePrompt"])
	assert.Equal(t, "dont_allow", req.Parameters["personGeneration"])
	assert.Equal(t, true, req.Parameters["generateAudio"])
	assert.NotContains(t, req.Parameters, "negativePrompt")
	assert.NotContains(t, req.Parameters, "resizeMode")
}

func TestBuildTextToVideo_EmptyPrompt(t *testing.T) {
	in := textInput(t)
	in.Prompt = ""

	_, err := BuildPredictionRequest(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildTextToVideo_NegativePrompt(t *testing.T) {
	in := textInput(t)
	in.NegativePrompt = "blurry, low quality"

	req, err := BuildPredictionRequest(in)
	require.NoError(t, err)
	assert.Equal(t, "blurry, low quality", req.Parameters["negativePrompt"])
}

func TestBuildTextToVideo_EnableAdult(t *testing.T) {
	in := textInput(t)
	in.EnableAdult = true

	req, err := BuildPredictionRequest(in)
	require.NoError(t, err)
	assert.Equal(t, "allow_adult", req.Parameters["personGeneration"])
}

func TestAudioGating(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		wantAudio bool
	}{
		{"veo 3 includes audio", "veo-3.0-generate-001", true},
		{"veo 3.1 includes audio", "veo-3.1-generate-preview", true},
		{"veo 2 drops audio", "veo-2.0-generate-001", false},
		{"veo 2 exp drops audio", "veo-2.0-generate-exp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := textInput(t)
			in.Model = descriptor(t, tt.model)
			in.GenerateAudio = true

			req, err := BuildPredictionRequest(in)
			require.NoError(t, err)

			if tt.wantAudio {
				assert.Equal(t, true, req.Parameters["generateAudio"])
			} else {
				// Requested but silently dropped for models that reject it.
				assert.NotContains(t, req.Parameters, "generateAudio")
			}
		})
	}
}

func imageInput(t *testing.T) BuildInput {
	in := textInput(t)
	in.Mode = ModeImageToVideo
	in.Prompt = ""
	in.Image = "aGVsbG8="
	in.ImageMimeType = "image/png"
	in.ResizeMode = "pad"
	return in
}

func TestBuildImageToVideo(t *testing.T) {
	req, err := BuildPredictionRequest(imageInput(t))
	require.NoError(t, err)

	require.Len(t, req.Instances, 1)
	image, ok := req.Instances[0]["image"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "aGVsbG8=", image["bytesBase64Encoded"])
	assert.Equal(t, "image/png", image["mimeType"])
	assert.NotContains(t, req.Instances[0], "prompt")

	assert.Equal(t, "pad", req.Parameters["resizeMode"])
	assert.NotContains(t, req.Parameters, "enhancePrompt")
	assert.NotContains(t, req.Parameters, "negativePrompt")
}

func TestBuildImageToVideo_WithPrompt(t *testing.T) {
	in := imageInput(t)
	in.Prompt = "make it move"

	req, err := BuildPredictionRequest(in)
	require.NoError(t, err)
	assert.Equal(t, "make it move", req.Instances[0]["prompt"])
}

func TestBuildImageToVideo_EmptyImage(t *testing.T) {
	in := imageInput(t)
	in.Image = ""

	_, err := BuildPredictionRequest(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildImageToVideo_Defaults(t *testing.T) {
	in := imageInput(t)
	in.ImageMimeType = ""
	in.ResizeMode = ""
	in.CompressionQuality = ""

	req, err := BuildPredictionRequest(in)
	require.NoError(t, err)

	image := req.Instances[0]["image"].(map[string]any)
	assert.Equal(t, DefaultImageMimeType, image["mimeType"])
	assert.Equal(t, DefaultResizeMode, req.Parameters["resizeMode"])
	assert.Equal(t, DefaultCompressionQuality, req.Parameters["compressionQuality"])
}
