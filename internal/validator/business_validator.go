package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/kisahtegar/alqowy/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Upload limits enforced before anything touches object storage.
const (
	MaxProofSizeBytes = 5 << 20  // 5 MiB
	MaxImageSizeBytes = 2 << 20  // 2 MiB
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRoleTransition checks whether a user may move from one role to
// another. Owners never change role; students and teachers swap between
// exactly those two roles.
func (bv *BusinessValidator) ValidateRoleTransition(current, target models.UserRole) ValidationErrors {
	var errors ValidationErrors

	if !target.Valid() {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "unknown role",
			Value:   target,
			Rule:    "business_logic",
		})
		return errors
	}

	allowed := map[models.UserRole][]models.UserRole{
		models.RoleStudent: {models.RoleTeacher},
		models.RoleTeacher: {models.RoleStudent},
	}

	for _, t := range allowed[current] {
		if t == target {
			return nil
		}
	}

	errors = append(errors, ValidationError{
		Field:   "role",
		Message: "role transition not allowed",
		Value:   target,
		Rule:    "business_logic",
	})
	return errors
}

// ValidateUpload checks size and content type for a multipart upload
// before it is forwarded to object storage.
func (bv *BusinessValidator) ValidateUpload(sizeBytes int64, contentType string, maxSize int64) ValidationErrors {
	var errors ValidationErrors

	if sizeBytes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "file is empty",
			Rule:    "business_logic",
		})
	}

	if sizeBytes > maxSize {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "file exceeds the size limit",
			Value:   sizeBytes,
			Rule:    "business_logic",
		})
	}

	if !allowedImageTypes[contentType] {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "unsupported file type",
			Value:   contentType,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
}
