package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/storage/s3"
	"github.com/kisahtegar/alqowy/internal/utils"
	"github.com/kisahtegar/alqowy/internal/validator"
)

type courseService struct {
	repo          repositories.Repository
	db            *gorm.DB
	logger        *slog.Logger
	validator     *validator.Validator
	files         s3.FileStore
	subscriptions SubscriptionService
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, files s3.FileStore, subscriptions SubscriptionService) CourseService {
	return &courseService{
		repo:          repo,
		db:            db,
		logger:        logger,
		validator:     validator,
		files:         files,
		subscriptions: subscriptions,
	}
}

// ===== MANAGEMENT =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, thumbnail *FileUpload) (*CourseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	if _, err := s.repo.Category().GetByID(ctx, nil, req.CategoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if _, err := s.repo.Teacher().GetByID(ctx, nil, req.TeacherID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}

	slug := utils.Slugify(req.Name)
	if _, err := s.repo.Course().GetBySlugWithDetails(ctx, nil, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	course := &models.Course{
		Name:       req.Name,
		Slug:       slug,
		About:      req.About,
		CategoryID: req.CategoryID,
		TeacherID:  req.TeacherID,
	}
	if req.PathTrailer != nil {
		course.PathTrailer = *req.PathTrailer
	}

	if thumbnail != nil {
		thumbURL, err := s.uploadThumbnail(ctx, thumbnail)
		if err != nil {
			return nil, err
		}
		course.Thumbnail = &thumbURL
	}

	err := withTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.Course().Create(ctx, tx, course); err != nil {
			return fmt.Errorf("failed to create course: %w", err)
		}
		if len(req.Keypoints) > 0 {
			if err := s.repo.Course().ReplaceKeypoints(ctx, tx, course.ID, req.Keypoints); err != nil {
				return fmt.Errorf("failed to create keypoints: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("course created", "course_id", course.ID, "slug", course.Slug)
	return &CourseResponse{Course: course}, nil
}

func (s *courseService) GetByID(ctx context.Context, courseID uint) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &CourseResponse{Course: course}, nil
}

func (s *courseService) Update(ctx context.Context, courseID uint, req *UpdateCourseRequest, thumbnail *FileUpload) (*CourseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if req.Name != nil && *req.Name != course.Name {
		slug := utils.Slugify(*req.Name)
		if existing, err := s.repo.Course().GetBySlugWithDetails(ctx, nil, slug); err == nil {
			if existing.ID != course.ID {
				return nil, ErrSlugTaken
			}
		} else if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		course.Name = *req.Name
		course.Slug = slug
	}
	if req.About != nil {
		course.About = *req.About
	}
	if req.PathTrailer != nil {
		course.PathTrailer = *req.PathTrailer
	}
	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, nil, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		course.CategoryID = *req.CategoryID
	}
	if req.TeacherID != nil {
		if _, err := s.repo.Teacher().GetByID(ctx, nil, *req.TeacherID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrTeacherNotFound
			}
			return nil, fmt.Errorf("failed to get teacher: %w", err)
		}
		course.TeacherID = *req.TeacherID
	}

	if thumbnail != nil {
		thumbURL, err := s.uploadThumbnail(ctx, thumbnail)
		if err != nil {
			return nil, err
		}
		course.Thumbnail = &thumbURL
	}

	err = withTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.Course().Update(ctx, tx, course); err != nil {
			return fmt.Errorf("failed to update course: %w", err)
		}
		if req.Keypoints != nil {
			if err := s.repo.Course().ReplaceKeypoints(ctx, tx, course.ID, req.Keypoints); err != nil {
				return fmt.Errorf("failed to replace keypoints: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("course updated", "course_id", course.ID, "slug", course.Slug)
	return &CourseResponse{Course: course}, nil
}

func (s *courseService) Delete(ctx context.Context, courseID uint) error {
	if err := s.repo.Course().Delete(ctx, nil, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.logger.Info("course deleted", "course_id", courseID)
	return nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	resp := &CourseListResponse{
		Courses: make([]*CourseResponse, 0, len(courses)),
		Total:   total,
	}
	if filters.Limit > 0 {
		resp.Size = filters.Limit
		resp.Page = filters.Offset/filters.Limit + 1
	}
	for _, c := range courses {
		resp.Courses = append(resp.Courses, &CourseResponse{Course: c})
	}
	return resp, nil
}

// ===== VIDEOS =====

func (s *courseService) AddVideo(ctx context.Context, courseID uint, req *CreateCourseVideoRequest) (*models.CourseVideo, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	if _, err := s.repo.Course().GetByID(ctx, nil, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	video := &models.CourseVideo{
		Name:      req.Name,
		PathVideo: req.PathVideo,
		CourseID:  courseID,
	}
	if err := s.repo.Course().CreateVideo(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	s.logger.Info("course video added", "course_id", courseID, "video_id", video.ID)
	return video, nil
}

func (s *courseService) UpdateVideo(ctx context.Context, videoID uint, req *UpdateCourseVideoRequest) (*models.CourseVideo, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	video, err := s.repo.Course().GetVideoByID(ctx, nil, videoID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if req.Name != nil {
		video.Name = *req.Name
	}
	if req.PathVideo != nil {
		video.PathVideo = *req.PathVideo
	}

	if err := s.repo.Course().UpdateVideo(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	return video, nil
}

func (s *courseService) DeleteVideo(ctx context.Context, videoID uint) error {
	if err := s.repo.Course().DeleteVideo(ctx, nil, videoID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

// ===== PUBLIC CATALOG =====

// Details serves the public course page. Anyone may look; enrollment
// status is included when the viewer is known.
func (s *courseService) Details(ctx context.Context, slug string, userID *string) (*CourseResponse, error) {
	course, err := s.repo.Course().GetBySlugWithDetails(ctx, nil, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	resp := &CourseResponse{Course: course}
	if userID != nil {
		enrolled, err := s.repo.Course().IsEnrolled(ctx, nil, course.ID, *userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment: %w", err)
		}
		resp.IsEnrolled = enrolled
	}
	return resp, nil
}

func (s *courseService) ListByCategory(ctx context.Context, categorySlug string) (*CourseListResponse, error) {
	category, err := s.repo.Category().GetBySlug(ctx, nil, categorySlug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	courses, err := s.repo.Course().ListByCategory(ctx, nil, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	resp := &CourseListResponse{
		Courses: make([]*CourseResponse, 0, len(courses)),
		Total:   int64(len(courses)),
	}
	for _, c := range courses {
		resp.Courses = append(resp.Courses, &CourseResponse{Course: c})
	}
	return resp, nil
}

// ===== LEARNING =====

// Learn serves the learning page. Students need an active subscription;
// teachers and owners pass the gate by role. First access enrolls the
// user on the course roster, idempotently.
func (s *courseService) Learn(ctx context.Context, userID, slug string, videoID *uint) (*LearnResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.HasRole(models.RoleStudent) {
		if err := s.subscriptions.GateAccess(ctx, userID); err != nil {
			return nil, err
		}
	}

	course, err := s.repo.Course().GetBySlugWithDetails(ctx, nil, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if err := s.repo.Course().EnrollStudent(ctx, nil, course.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}

	resp := &LearnResponse{
		Course: &CourseResponse{Course: course, IsEnrolled: true},
	}

	if videoID != nil {
		for i := range course.Videos {
			if course.Videos[i].ID == *videoID {
				resp.CurrentVideo = &course.Videos[i]
				break
			}
		}
		if resp.CurrentVideo == nil {
			return nil, ErrVideoNotFound
		}
	}

	s.logger.Info("learning page served", "user_id", userID, "course_id", course.ID, "slug", slug)
	return resp, nil
}

func (s *courseService) uploadThumbnail(ctx context.Context, thumbnail *FileUpload) (string, error) {
	if errs := s.validator.GetBusinessValidator().ValidateUpload(thumbnail.Size, thumbnail.ContentType, validator.MaxImageSizeBytes); len(errs) > 0 {
		return "", fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}
	url, err := s.files.Upload(ctx, s3.PrefixThumbnails, thumbnail.Filename, thumbnail.ContentType, thumbnail.Data)
	if err != nil {
		s.logger.Error("thumbnail upload failed", "error", err)
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, err.Error())
	}
	return url, nil
}
