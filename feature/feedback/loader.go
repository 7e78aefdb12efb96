package feedback

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	counter *Counter
	handler *Handler
}

// NewFeature creates the feedback feature.
func NewFeature(db *gorm.DB, logger *zap.Logger) *Feature {
	counter := NewCounter(db)
	return &Feature{counter: counter, handler: NewHandler(counter, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "feedback"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.counter.db != nil
}

// Load migrates the tally table and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.counter.Prepare(); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}
