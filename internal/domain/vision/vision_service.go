package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jelajah/jelajah-api/internal/assistant"
	"github.com/jelajah/jelajah-api/internal/types"
)

// MaxImageBytes caps the decoded image size accepted by the service.
const MaxImageBytes = 5 << 20

var _ Service = (*ServiceImpl)(nil)

// Service identifies landmarks in traveler photos.
type Service interface {
	Identify(ctx context.Context, encodedImage string) (*types.ResultEnvelope, error)
}

//revive:disable-next-line:exported
type ServiceImpl struct {
	logger  *slog.Logger
	runner  assistant.Runner
	useCase assistant.UseCase
}

func NewServiceImpl(runner assistant.Runner, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		runner:  runner,
		useCase: assistant.VisionUseCase(),
	}
}

// Identify decodes the submitted image and runs it through the vision chain.
// The payload may be a bare base64 string or a data URL.
func (s *ServiceImpl) Identify(ctx context.Context, encodedImage string) (*types.ResultEnvelope, error) {
	ctx, span := otel.Tracer("VisionService").Start(ctx, "Identify")
	defer span.End()

	image, err := decodeImage(encodedImage)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("image.bytes", len(image)))

	req := &types.AssistantRequest{Image: image}
	env := s.runner.Run(ctx, req, s.useCase)
	if env == nil || env.Vision == nil {
		return nil, fmt.Errorf("assistant returned no vision payload")
	}
	return env, nil
}

// decodeImage accepts "data:image/...;base64,<payload>" or a bare base64
// payload and enforces the size cap on the decoded bytes.
func decodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, types.ErrBadRequest
	}
	if strings.HasPrefix(encoded, "data:") {
		_, payload, ok := strings.Cut(encoded, ",")
		if !ok {
			return nil, types.ErrBadRequest
		}
		encoded = payload
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, types.ErrBadRequest
	}
	if len(image) == 0 {
		return nil, types.ErrBadRequest
	}
	if len(image) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", types.ErrBadRequest, MaxImageBytes)
	}
	return image, nil
}
