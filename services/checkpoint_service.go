// services/checkpoint_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"checkpoint-rewards/models"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/storage"
)

const checkpointIDLength = 10

type CheckpointService struct {
	store storage.CheckpointStore
	newID func() string
}

func NewCheckpointService(store storage.CheckpointStore) *CheckpointService {
	return &CheckpointService{store: store, newID: shortID}
}

// shortID takes the first 10 hex characters of a random UUID.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:checkpointIDLength]
}

// CheckpointInput carries create/patch fields. For Create, nil means default.
type CheckpointInput struct {
	Name            *string
	Description     *string
	ChainType       *string
	PointsValue     *int
	IsActive        *bool
	PartnerImageURL *string
}

func (s *CheckpointService) Create(ctx context.Context, in CheckpointInput, createdBy string) (*models.Checkpoint, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.Validation("Name is required")
	}
	if err := validateCheckpointInput(in); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(*in.Name)
	c := &models.Checkpoint{
		Name:        name,
		Slug:        slug.Make(name),
		ChainType:   models.ChainEVM,
		PointsValue: models.DefaultCheckpointPoints,
		IsActive:    true,
		CreatedBy:   models.StringPtr(createdBy),
	}
	if in.Description != nil {
		c.Description = models.StringPtr(strings.TrimSpace(*in.Description))
	}
	if in.ChainType != nil {
		c.ChainType, _ = models.ParseChain(*in.ChainType)
	}
	if in.PointsValue != nil {
		c.PointsValue = *in.PointsValue
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.PartnerImageURL != nil {
		c.PartnerImageURL = models.StringPtr(strings.TrimSpace(*in.PartnerImageURL))
	}

	// IDs are short, so retry a couple of times on the rare collision.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		c.ID = s.newID()
		err = s.store.Create(ctx, c)
		if !errors.Is(err, storage.ErrDuplicateKey) {
			break
		}
	}
	if err != nil {
		return nil, storeError("Failed to create checkpoint", err)
	}
	return c, nil
}

func (s *CheckpointService) Get(ctx context.Context, id string) (*models.Checkpoint, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Checkpoint not found")
		}
		return nil, storeError("Failed to load checkpoint", err)
	}
	return c, nil
}

func (s *CheckpointService) List(ctx context.Context, activeOnly bool) ([]*models.Checkpoint, error) {
	list, err := s.store.List(ctx, activeOnly)
	if err != nil {
		return nil, storeError("Failed to list checkpoints", err)
	}
	return list, nil
}

func (s *CheckpointService) Update(ctx context.Context, id string, in CheckpointInput) (*models.Checkpoint, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.Validation("Name cannot be empty")
	}
	if err := validateCheckpointInput(in); err != nil {
		return nil, err
	}

	u := storage.CheckpointUpdate{
		Description:     in.Description,
		PointsValue:     in.PointsValue,
		IsActive:        in.IsActive,
		PartnerImageURL: in.PartnerImageURL,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		sl := slug.Make(name)
		u.Name = &name
		u.Slug = &sl
	}
	if in.ChainType != nil {
		chain, _ := models.ParseChain(*in.ChainType)
		u.ChainType = &chain
	}

	c, err := s.store.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Checkpoint not found")
		}
		return nil, storeError("Failed to update checkpoint", err)
	}
	return c, nil
}

func (s *CheckpointService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("Checkpoint not found")
		}
		return storeError("Failed to delete checkpoint", err)
	}
	return nil
}

func validateCheckpointInput(in CheckpointInput) error {
	if in.Name != nil && len(*in.Name) > MaxVarcharLength {
		return apperrors.Validation(fmt.Sprintf("Name must be at most %d characters", MaxVarcharLength))
	}
	if in.ChainType != nil {
		if _, ok := models.ParseChain(*in.ChainType); !ok {
			return apperrors.Validation("chain_type must be one of: evm, solana, stellar")
		}
	}
	if in.PointsValue != nil && (*in.PointsValue < 1 || *in.PointsValue > models.MaxCheckpointPoints) {
		return apperrors.Validation(fmt.Sprintf("points_value must be between 1 and %d", models.MaxCheckpointPoints))
	}
	if in.PartnerImageURL != nil && strings.TrimSpace(*in.PartnerImageURL) != "" {
		u, err := url.Parse(strings.TrimSpace(*in.PartnerImageURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperrors.Validation("partner_image_url must be a valid URL")
		}
	}
	return nil
}
