package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/certificate"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/storage"
)

type profileService struct {
	deps     *Dependencies
	repo     repositories.Repository
	logger   *slog.Logger
	progress ProgressService
}

func NewProfileService(deps *Dependencies, progress ProgressService) ProfileService {
	deps = deps.withDefaults()
	return &profileService{
		deps:     deps,
		repo:     deps.Repo,
		logger:   deps.Logger,
		progress: progress,
	}
}

// ProfilePhotoKey is the storage key of a user's normalised photo
func ProfilePhotoKey(userID string) string {
	return fmt.Sprintf("profiles/%s.png", userID)
}

func (s *profileService) GetSummary(ctx context.Context, userID string) (*models.ProfileSummary, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	courses, err := s.progress.ListMyCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	certs, err := s.repo.Certificate().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	return &models.ProfileSummary{
		User:             user,
		Courses:          courses,
		CertificateCount: len(certs),
	}, nil
}

func (s *profileService) UploadPhoto(ctx context.Context, userID string, data []byte) error {
	if len(data) > certificate.MaxPhotoBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidPhoto, certificate.MaxPhotoBytes)
	}

	normalised, err := certificate.PrepareProfilePhoto(data)
	if err != nil {
		s.logger.Warn("Profile photo rejected", "user_id", userID, "error", err)
		return fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}

	key := ProfilePhotoKey(userID)
	if err := s.deps.Store.Put(ctx, key, normalised, "image/png"); err != nil {
		return fmt.Errorf("failed to store photo: %w", err)
	}
	if err := s.repo.User().SetPhotoKey(ctx, userID, key); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to save photo key: %w", err)
	}

	s.logger.Info("Profile photo updated", "user_id", userID, "bytes", len(normalised))
	return nil
}

func (s *profileService) GetPhoto(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.HasPhoto() {
		return nil, ErrPhotoNotFound
	}

	data, err := s.deps.Store.Get(ctx, *user.PhotoKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}
