package services

import "errors"

// Service-level sentinel errors. Handlers map these onto HTTP status
// codes with errors.Is, so wrapped errors keep their classification.
var (
	// Generic
	ErrValidationFailed = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")

	// Users and roles
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyHasRole = errors.New("user already has this role")
	ErrRoleConflict   = errors.New("role changed concurrently")

	// Teachers
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrAlreadyTeacher  = errors.New("user is already a teacher")

	// Subscriptions
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrAlreadySubscribed    = errors.New("subscription already active")
	ErrSubscriptionRequired = errors.New("active subscription required")

	// Catalog
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category has courses attached")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrCourseNotFound   = errors.New("course not found")
	ErrVideoNotFound    = errors.New("course video not found")

	// Files
	ErrUploadFailed = errors.New("file upload failed")
)
