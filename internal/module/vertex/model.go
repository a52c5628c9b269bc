package vertex

import "fmt"

// Mode identifies the generation mode.
type Mode string

const (
	// ModeTextToVideo generates video from a text prompt.
	ModeTextToVideo Mode = "text-to-video"
	// ModeImageToVideo generates video from a source image.
	ModeImageToVideo Mode = "image-to-video"
)

// ParseMode parses a mode string. An empty string defaults to text-to-video.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeTextToVideo):
		return ModeTextToVideo, nil
	case string(ModeImageToVideo):
		return ModeImageToVideo, nil
	default:
		return "", fmt.Errorf("invalid generation mode: %s", s)
	}
}

// ModelDescriptor describes a Veo model and its capabilities.
type ModelDescriptor struct {
	ID string
	// AudioCapable reports whether the model accepts the generateAudio
	// parameter. Vertex AI rejects it for models that do not.
	AudioCapable bool
}

// DefaultModel is used when a request does not name a model.
const DefaultModel = "veo-3.0-generate-001"

var modelRegistry = []ModelDescriptor{
	{ID: "veo-3.1-generate-preview", AudioCapable: true},
	{ID: "veo-3.1-fast-generate-preview", AudioCapable: true},
	{ID: "veo-3.0-generate-001", AudioCapable: true},
	{ID: "veo-3.0-fast-generate-001", AudioCapable: true},
	{ID: "veo-2.0-generate-001", AudioCapable: false},
	{ID: "veo-2.0-generate-exp", AudioCapable: false},
	{ID: "veo-2.0-generate-preview", AudioCapable: false},
}

// LookupModel returns the descriptor for a model ID. An empty ID resolves
// to the default model.
func LookupModel(id string) (ModelDescriptor, error) {
	if id == "" {
		id = DefaultModel
	}
	for _, m := range modelRegistry {
		if m.ID == id {
			return m, nil
		}
	}
	return ModelDescriptor{}, fmt.Errorf("invalid model: %s", id)
}

// AvailableModels returns the IDs of all supported models.
func AvailableModels() []string {
	ids := make([]string, 0, len(modelRegistry))
	for _, m := range modelRegistry {
		ids = append(ids, m.ID)
	}
	return ids
}
