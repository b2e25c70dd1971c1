package portrait

import (
	"context"
	"time"

	"character-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	logger  *zap.Logger
}

// NewFeature creates the portrait feature. A nil storage client disables it.
func NewFeature(client storage.Client, bucket string, pub Publisher, logger *zap.Logger) *Feature {
	if client == nil {
		return &Feature{logger: logger}
	}
	svc := NewService(client, bucket, pub, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h, logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "portrait"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load ensures the bucket exists and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := f.service.EnsureBucket(ctx); err != nil {
		// Storage may come up later; uploads will surface the error per request.
		f.logger.Warn("Portrait bucket check failed", zap.Error(err))
	}
	f.handler.RegisterRoutes(app)
	return nil
}
