package video

import (
	"context"

	"go.uber.org/zap"

	"github.com/veoflow/server/internal/module/gallery"
	"github.com/veoflow/server/internal/module/vertex"
	apperrors "github.com/veoflow/server/internal/shared/errors"
	"github.com/veoflow/server/internal/utils/metrics"
)

// Gateway is the slice of the Vertex AI client the service depends on.
type Gateway interface {
	Submit(ctx context.Context, token, projectID, location, model string, req *vertex.PredictionRequest) (*vertex.Operation, error)
	Poll(ctx context.Context, token, location, operationName string) (*vertex.OperationStatus, error)
}

// CredentialResolver resolves request credentials to bearer tokens.
type CredentialResolver interface {
	Resolve(ctx context.Context, cred vertex.Credential) (string, error)
	HasFallback() bool
}

// GalleryStore persists completed generations.
type GalleryStore interface {
	Append(entries []gallery.Entry) error
	List() []gallery.Entry
	Len() int
}

// Service orchestrates video generation: it validates requests, resolves
// credentials, submits predictions, and records finished videos in the
// gallery.
type Service struct {
	gateway         Gateway
	resolver        CredentialResolver
	store           GalleryStore
	defaultLocation string
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

// ServiceConfig holds service configuration.
type ServiceConfig struct {
	Gateway         Gateway
	Resolver        CredentialResolver
	Store           GalleryStore
	DefaultLocation string
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
}

// NewService creates a new video service.
func NewService(cfg *ServiceConfig) *Service {
	s := &Service{
		gateway:         cfg.Gateway,
		resolver:        cfg.Resolver,
		store:           cfg.Store,
		defaultLocation: cfg.DefaultLocation,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
	}
	if s.defaultLocation == "" {
		s.defaultLocation = "us-central1"
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Generate validates the request, builds the prediction payload, and
// submits it. It returns the operation name the browser polls with.
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req.ProjectID == "" {
		return nil, apperrors.Validation("project ID is required")
	}

	cred := vertex.Credential{
		AccessToken:        req.AccessToken,
		ServiceAccountJSON: req.ServiceAccountJSON,
	}
	if cred.AccessToken == "" && cred.ServiceAccountJSON == "" && !s.resolver.HasFallback() {
		return nil, apperrors.Validation("either access token or service account JSON is required")
	}

	model, mode, err := req.normalize()
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	prediction, err := vertex.BuildPredictionRequest(vertex.BuildInput{
		Mode:               mode,
		Model:              model,
		Prompt:             req.Prompt,
		NegativePrompt:     req.NegativePrompt,
		Image:              req.Image,
		ImageMimeType:      req.MimeType,
		Duration:           req.Duration,
		AspectRatio:        req.AspectRatio,
		Resolution:         req.Resolution,
		SampleCount:        req.SampleCount,
		CompressionQuality: req.CompressionQuality,
		EnhancePrompt:      boolOrDefault(req.EnhancePrompt),
		GenerateAudio:      boolOrDefault(req.GenerateAudio),
		EnableAdult:        req.EnableAdult,
		ResizeMode:         req.ResizeMode,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.resolver.Resolve(ctx, cred)
	if err != nil {
		return nil, err
	}

	op, err := s.gateway.Submit(ctx, token, req.ProjectID, req.Location, model.ID, prediction)
	if err != nil {
		s.recordSubmit(model.ID, mode, "error")
		return nil, apperrors.Gateway(err.Error(), err)
	}
	s.recordSubmit(model.ID, mode, "success")

	s.logger.Info("generation started",
		zap.String("operation", op.Name),
		zap.String("model", model.ID),
		zap.String("mode", string(mode)),
	)

	return &GenerateResponse{
		Success:       true,
		OperationName: op.Name,
		Message:       "Video generation started",
	}, nil
}

// Poll checks a long-running operation once. When the operation has
// finished, its videos are recorded in the gallery; a pending operation
// leaves the store untouched. A gallery write failure is logged and does
// not fail the poll, since the videos are already in the response.
func (s *Service) Poll(ctx context.Context, req *PollRequest) (*PollResult, error) {
	if req.OperationName == "" {
		return nil, apperrors.Validation("operation name is required")
	}

	location := req.Location
	if location == "" {
		location = s.defaultLocation
	}

	token, err := s.resolver.Resolve(ctx, vertex.Credential{
		AccessToken:        req.AccessToken,
		ServiceAccountJSON: req.ServiceAccountJSON,
	})
	if err != nil {
		return nil, err
	}

	status, err := s.gateway.Poll(ctx, token, location, req.OperationName)
	if err != nil {
		s.recordPoll("error")
		return nil, apperrors.Gateway(err.Error(), err)
	}

	if !status.Done {
		s.recordPoll("pending")
		return &PollResult{Done: false}, nil
	}
	s.recordPoll("done")

	result := &PollResult{Done: true, Videos: []Video{}}
	if status.Response != nil {
		result.RaiFilteredCount = status.Response.RaiMediaFilteredCount
		for _, v := range status.Response.Videos {
			mimeType := v.MimeType
			if mimeType == "" {
				mimeType = "video/mp4"
			}
			result.Videos = append(result.Videos, Video{
				URL:                v.GcsURI,
				MimeType:           mimeType,
				BytesBase64Encoded: v.BytesBase64Encoded,
			})
		}
	}

	s.saveToGallery(req.OperationName, result.Videos)
	return result, nil
}

// Gallery returns the stored generations, newest first.
func (s *Service) Gallery() []gallery.Entry {
	return s.store.List()
}

func (s *Service) saveToGallery(operationName string, videos []Video) {
	if len(videos) == 0 {
		return
	}

	entries := make([]gallery.Entry, 0, len(videos))
	for _, v := range videos {
		entries = append(entries, gallery.Entry{
			URL:                v.URL,
			MimeType:           v.MimeType,
			BytesBase64Encoded: v.BytesBase64Encoded,
			Operation:          operationName,
		})
	}

	if err := s.store.Append(entries); err != nil {
		s.logger.Warn("failed to save videos to gallery",
			zap.String("operation", operationName),
			zap.Error(err),
		)
		return
	}

	if s.metrics != nil {
		s.metrics.GalleryEntries.Set(float64(s.store.Len()))
	}
}

func (s *Service) recordSubmit(model string, mode vertex.Mode, status string) {
	if s.metrics != nil {
		s.metrics.RecordSubmit(model, string(mode), status)
	}
}

func (s *Service) recordPoll(result string) {
	if s.metrics != nil {
		s.metrics.RecordPoll(result)
	}
}
