package video

import "github.com/veoflow/server/internal/module/vertex"

// GenerateRequest is the body of POST /api/generate. Credentials travel
// with the request; the server keeps nothing between calls.
type GenerateRequest struct {
	ProjectID          string `json:"projectId"`
	Location           string `json:"location"`
	Model              string `json:"model"`
	Mode               string `json:"mode"`
	AccessToken        string `json:"accessToken"`
	ServiceAccountJSON string `json:"serviceAccountJson"`

	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt"`
	Image          string `json:"image"`
	MimeType       string `json:"mimeType"`

	Duration           int    `json:"duration"`
	AspectRatio        string `json:"aspectRatio"`
	Resolution         string `json:"resolution"`
	SampleCount        int    `json:"sampleCount"`
	CompressionQuality string `json:"compressionQuality"`
	EnhancePrompt      *bool  `json:"enhancePrompt"`
	GenerateAudio      *bool  `json:"generateAudio"`
	EnableAdult        bool   `json:"enableAdult"`
	ResizeMode         string `json:"resizeMode"`
}

// GenerateResponse acknowledges a started generation.
type GenerateResponse struct {
	Success       bool   `json:"success"`
	OperationName string `json:"operationName"`
	Message       string `json:"message"`
}

// PollRequest is the body of POST /api/poll. Credentials are optional;
// absent ones fall back to the server-configured resolver strategies.
type PollRequest struct {
	OperationName      string `json:"operationName"`
	Location           string `json:"location"`
	AccessToken        string `json:"accessToken"`
	ServiceAccountJSON string `json:"serviceAccountJson"`
}

// Video is a generated video as returned to the browser.
type Video struct {
	URL                string `json:"url"`
	MimeType           string `json:"mimeType"`
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
}

// PollResult is the outcome of a single poll.
type PollResult struct {
	Done             bool
	Videos           []Video
	RaiFilteredCount int
}

// PollPendingResponse is the wire shape for an unfinished operation.
type PollPendingResponse struct {
	Done    bool   `json:"done"`
	Message string `json:"message"`
}

// PollDoneResponse is the wire shape for a finished operation.
type PollDoneResponse struct {
	Done             bool    `json:"done"`
	Videos           []Video `json:"videos"`
	RaiFilteredCount int     `json:"raiFilteredCount"`
}

// normalize fills request defaults in place and resolves the model and
// mode against their registries.
func (r *GenerateRequest) normalize() (vertex.ModelDescriptor, vertex.Mode, error) {
	model, err := vertex.LookupModel(r.Model)
	if err != nil {
		return vertex.ModelDescriptor{}, "", err
	}
	mode, err := vertex.ParseMode(r.Mode)
	if err != nil {
		return vertex.ModelDescriptor{}, "", err
	}

	if r.Location == "" {
		r.Location = "us-central1"
	}
	if r.Duration == 0 {
		r.Duration = vertex.DefaultDuration
	}
	if r.AspectRatio == "" {
		r.AspectRatio = vertex.DefaultAspectRatio
	}
	if r.Resolution == "" {
		r.Resolution = vertex.DefaultResolution
	}
	if r.SampleCount == 0 {
		r.SampleCount = vertex.DefaultSampleCount
	}
	return model, mode, nil
}

// boolOrDefault dereferences an optional flag, defaulting to true when the
// request omitted it.
func boolOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
