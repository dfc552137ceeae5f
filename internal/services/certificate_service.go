package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/certificate"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/events"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/storage"
)

const pdfContentType = "application/pdf"

// CertificateFile is a rendered certificate ready to be streamed
type CertificateFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type certificateService struct {
	deps   *Dependencies
	repo   repositories.Repository
	logger *slog.Logger
}

func NewCertificateService(deps *Dependencies) CertificateService {
	deps = deps.withDefaults()
	return &certificateService{
		deps:   deps,
		repo:   deps.Repo,
		logger: deps.Logger,
	}
}

// ===== ISSUANCE =====

func (s *certificateService) IssueForResult(ctx context.Context, result *models.UserTestResult) (*models.Certificate, error) {
	if result == nil || !result.Passed {
		return nil, ErrNoPassingResult
	}

	existing, err := s.findExisting(ctx, result.UserID, result.CourseID)
	if err != nil || existing != nil {
		return existing, err
	}

	user, err := s.loadUser(ctx, result.UserID)
	if err != nil {
		return nil, err
	}
	course, err := s.repo.Course().GetByID(ctx, result.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	issuedAt := s.deps.now()
	serial := newSerialNumber(issuedAt)
	cert := &models.Certificate{
		UserID:       result.UserID,
		CourseID:     result.CourseID,
		TestResultID: result.ID,
		SerialNumber: serial,
		FileKey:      models.CertificateFileKey(result.UserID, result.CourseID, issuedAt, serial),
		IssuedAt:     issuedAt,
	}

	pdf, err := s.deps.Renderer.Render(certificate.Data{
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		FullName:       user.DisplayName(),
		CourseName:     course.Name,
		Percentage:     result.Percentage,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		IssuedAt:       issuedAt,
		SerialNumber:   cert.SerialNumber,
		Photo:          s.loadAvatar(ctx, user),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	if err := s.deps.Store.Put(ctx, cert.FileKey, pdf, pdfContentType); err != nil {
		return nil, fmt.Errorf("failed to store certificate: %w", err)
	}

	if err := s.repo.Certificate().Create(ctx, cert); err != nil {
		if repositories.IsUniqueViolation(err) {
			// A concurrent submission issued first; its file is kept
			s.removeArtifact(ctx, cert.FileKey)
			winner, findErr := s.findExisting(ctx, result.UserID, result.CourseID)
			if findErr != nil {
				return nil, findErr
			}
			if winner == nil {
				return nil, fmt.Errorf("failed to create certificate: %w", err)
			}
			return winner, nil
		}
		s.removeArtifact(ctx, cert.FileKey)
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	s.logger.Info("Certificate issued",
		"certificate_id", cert.ID,
		"course_id", cert.CourseID,
		"user_id", cert.UserID,
		"serial_number", cert.SerialNumber)

	s.deps.publish(ctx, events.NewEvent(events.CertificateIssued, cert.UserID, events.CertificateIssuedData{
		CertificateID: cert.ID,
		CourseID:      cert.CourseID,
		SerialNumber:  cert.SerialNumber,
	}))

	return cert, nil
}

func (s *certificateService) Reissue(ctx context.Context, courseID uint, userID string) (*models.Certificate, error) {
	existing, err := s.findExisting(ctx, userID, courseID)
	if err != nil || existing != nil {
		return existing, err
	}

	result, err := s.repo.Result().LatestPassedCourseResult(ctx, userID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoPassingResult
		}
		return nil, fmt.Errorf("failed to get passing result: %w", err)
	}
	return s.IssueForResult(ctx, result)
}

// ===== READS =====

func (s *certificateService) ListMine(ctx context.Context, userID string) ([]*models.Certificate, error) {
	certs, err := s.repo.Certificate().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

func (s *certificateService) Download(ctx context.Context, certificateID uint, userID string) (*CertificateFile, error) {
	cert, err := s.repo.Certificate().GetByID(ctx, certificateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	if cert.UserID != userID {
		return nil, NewPermissionError(userID, certificateID, "certificate", "download", "not the owner")
	}
	if !cert.HasFile() {
		return nil, ErrCertificateNoFile
	}

	data, err := s.deps.Store.Get(ctx, cert.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrCertificateNoFile
		}
		return nil, fmt.Errorf("failed to read certificate file: %w", err)
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CertificateFile{
		Name:        CertificateFileName(user),
		ContentType: pdfContentType,
		Data:        data,
	}, nil
}

// ===== HELPERS =====

// CertificateFileName is the download name Sertifikat_{Last}_{First}.pdf
func CertificateFileName(user *models.User) string {
	first, last := strings.TrimSpace(user.FirstName), strings.TrimSpace(user.LastName)
	if first == "" && last == "" {
		parts := strings.Fields(user.FullName)
		if len(parts) > 0 {
			first = parts[0]
		}
		if len(parts) > 1 {
			last = parts[len(parts)-1]
		}
	}
	clean := func(s string) string {
		return strings.Join(strings.Fields(s), "_")
	}
	return fmt.Sprintf("Sertifikat_%s_%s.pdf", clean(last), clean(first))
}

func newSerialNumber(issuedAt time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("YT-%s-%s", issuedAt.Format("20060102"), strings.ToUpper(id[:8]))
}

func (s *certificateService) findExisting(ctx context.Context, userID string, courseID uint) (*models.Certificate, error) {
	cert, err := s.repo.Certificate().GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check existing certificate: %w", err)
	}
	return cert, nil
}

func (s *certificateService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user, err = s.repo.Identity().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user from directory: %w", err)
	}
	return user, nil
}

// loadAvatar returns nil when the user has no usable photo; the renderer then
// draws the initials disc
func (s *certificateService) loadAvatar(ctx context.Context, user *models.User) image.Image {
	if !user.HasPhoto() {
		return nil
	}
	data, err := s.deps.Store.Get(ctx, *user.PhotoKey)
	if err != nil {
		s.logger.Warn("Profile photo unavailable", "user_id", user.ID, "error", err)
		return nil
	}
	avatar, err := certificate.Avatar(data)
	if err != nil {
		s.logger.Warn("Profile photo unreadable", "user_id", user.ID, "error", err)
		return nil
	}
	return avatar
}

func (s *certificateService) removeArtifact(ctx context.Context, key string) {
	if err := s.deps.Store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("Failed to remove orphaned certificate file", "key", key, "error", err)
	}
}
