package vertex

import (
	apperrors "github.com/veoflow/server/internal/shared/errors"
)

// Default request parameters.
const (
	DefaultDuration           = 8
	DefaultAspectRatio        = "16:9"
	DefaultResolution         = "1080p"
	DefaultSampleCount        = 1
	DefaultCompressionQuality = "optimized"
	DefaultImageMimeType      = "image/jpeg"
	DefaultResizeMode         = "pad"
)

// PredictionRequest is the JSON body for a predictLongRunning call.
type PredictionRequest struct {
	Instances  []map[string]any `json:"instances"`
	Parameters map[string]any   `json:"parameters"`
}

// BuildInput carries the normalized fields a prediction request is built
// from. Image holds base64-encoded bytes, not a URL.
type BuildInput struct {
	Mode  Mode
	Model ModelDescriptor

	Prompt         string
	NegativePrompt string
	Image          string
	ImageMimeType  string

	Duration           int
	AspectRatio        string
	Resolution         string
	SampleCount        int
	CompressionQuality string
	EnhancePrompt      bool
	GenerateAudio      bool
	EnableAdult        bool
	ResizeMode         string
}

// BuildPredictionRequest constructs the request body for the given mode.
func BuildPredictionRequest(in BuildInput) (*PredictionRequest, error) {
	switch in.Mode {
	case ModeTextToVideo:
		return buildTextToVideo(in)
	case ModeImageToVideo:
		return buildImageToVideo(in)
	default:
		return nil, apperrors.Validation("invalid generation mode")
	}
}

func buildTextToVideo(in BuildInput) (*PredictionRequest, error) {
	if in.Prompt == "" {
		return nil, apperrors.Validation("prompt is required for text-to-video generation")
	}

	params := map[string]any{
		"durationSeconds":    in.Duration,
		"aspectRatio":        in.AspectRatio,
		"resolution":         in.Resolution,
		"sampleCount":        in.SampleCount,
		"compressionQuality": compressionQualityOrDefault(in.CompressionQuality),
		"enhancePrompt":      in.EnhancePrompt,
		"personGeneration":   personGeneration(in.EnableAdult),
	}
	applyAudio(params, in)
	if in.NegativePrompt != "" {
		params["negativePrompt"] = in.NegativePrompt
	}

	return &PredictionRequest{
		Instances:  []map[string]any{{"prompt": in.Prompt}},
		Parameters: params,
	}, nil
}

func buildImageToVideo(in BuildInput) (*PredictionRequest, error) {
	if in.Image == "" {
		return nil, apperrors.Validation("image is required for image-to-video generation")
	}

	mimeType := in.ImageMimeType
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}

	instance := map[string]any{
		"image": map[string]any{
			"bytesBase64Encoded": in.Image,
			"mimeType":           mimeType,
		},
	}
	if in.Prompt != "" {
		instance["prompt"] = in.Prompt
	}

	resizeMode := in.ResizeMode
	if resizeMode == "" {
		resizeMode = DefaultResizeMode
	}

	params := map[string]any{
		"durationSeconds":    in.Duration,
		"aspectRatio":        in.AspectRatio,
		"resolution":         in.Resolution,
		"resizeMode":         resizeMode,
		"sampleCount":        in.SampleCount,
		"compressionQuality": compressionQualityOrDefault(in.CompressionQuality),
		"personGeneration":   personGeneration(in.EnableAdult),
	}
	applyAudio(params, in)

	return &PredictionRequest{
		Instances:  []map[string]any{instance},
		Parameters: params,
	}, nil
}

// applyAudio includes generateAudio only for audio-capable models; the API
// rejects the parameter otherwise.
func applyAudio(params map[string]any, in BuildInput) {
	if in.Model.AudioCapable {
		params["generateAudio"] = in.GenerateAudio
	}
}

func personGeneration(enableAdult bool) string {
	if enableAdult {
		return "allow_adult"
	}
	return "dont_allow"
}

func compressionQualityOrDefault(q string) string {
	if q == "" {
		return DefaultCompressionQuality
	}
	return q
}
