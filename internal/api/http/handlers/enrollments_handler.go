package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-enrollment-service/internal/api/dto"
	"github.com/spec-kit/course-enrollment-service/internal/domain"
	"github.com/spec-kit/course-enrollment-service/internal/service"
	apperrors "github.com/spec-kit/course-enrollment-service/pkg/util"
)

// EnrollmentsHandler manages enrollment endpoints.
type EnrollmentsHandler struct {
	service  *service.EnrollmentService
	validate *validator.Validate
}

// NewEnrollmentsHandler constructs handler.
func NewEnrollmentsHandler(enrollmentService *service.EnrollmentService) *EnrollmentsHandler {
	return &EnrollmentsHandler{
		service:  enrollmentService,
		validate: validator.New(),
	}
}

// List GET /api/enrollments.
func (h *EnrollmentsHandler) List(c *fiber.Ctx) error {
	enrollments, err := h.service.ListEnrollments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponses(enrollments)})
}

// Get GET /api/enrollments/:id.
func (h *EnrollmentsHandler) Get(c *fiber.Ctx) error {
	enrollment, err := h.service.GetEnrollment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// ListByUser GET /api/enrollments/user/:userId. An optional status query
// narrows the result to one lifecycle state.
func (h *EnrollmentsHandler) ListByUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	var enrollments []domain.Enrollment
	var err error
	if status := c.Query("status"); status != "" {
		enrollments, err = h.service.ListByUserAndStatus(c.UserContext(), userID, status)
	} else {
		enrollments, err = h.service.ListByUser(c.UserContext(), userID)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponses(enrollments)})
}

// ListByCourse GET /api/enrollments/course/:courseId.
func (h *EnrollmentsHandler) ListByCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	var enrollments []domain.Enrollment
	var err error
	if status := c.Query("status"); status != "" {
		enrollments, err = h.service.ListByCourseAndStatus(c.UserContext(), courseID, status)
	} else {
		enrollments, err = h.service.ListByCourse(c.UserContext(), courseID)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponses(enrollments)})
}

// ListByStatus GET /api/enrollments/status/:status.
func (h *EnrollmentsHandler) ListByStatus(c *fiber.Ctx) error {
	enrollments, err := h.service.ListByStatus(c.UserContext(), c.Params("status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponses(enrollments)})
}

// Enroll POST /api/enrollments?userId=&courseId=.
func (h *EnrollmentsHandler) Enroll(c *fiber.Ctx) error {
	req := dto.EnrollRequest{
		UserID:   c.Query("userId"),
		CourseID: c.Query("courseId"),
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.NewValidationError("userId and courseId required", nil)
	}
	enrollment, err := h.service.Enroll(c.UserContext(), req.UserID, req.CourseID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// UpdateProgress PUT /api/enrollments/:id/progress?progressPercentage=.
func (h *EnrollmentsHandler) UpdateProgress(c *fiber.Ctx) error {
	raw := c.Query("progressPercentage")
	progress, err := strconv.Atoi(raw)
	if err != nil {
		return apperrors.NewValidationError("progressPercentage must be an integer", map[string]any{
			"progress_percentage": raw,
		})
	}
	req := dto.UpdateProgressRequest{ProgressPercentage: progress}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.NewValidationError("progress percentage must be within [0, 100]", map[string]any{
			"progress_percentage": progress,
		})
	}
	enrollment, err := h.service.UpdateProgress(c.UserContext(), c.Params("id"), req.ProgressPercentage)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// Complete POST /api/enrollments/:id/complete.
func (h *EnrollmentsHandler) Complete(c *fiber.Ctx) error {
	enrollment, err := h.service.Complete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// Drop POST /api/enrollments/:id/drop.
func (h *EnrollmentsHandler) Drop(c *fiber.Ctx) error {
	enrollment, err := h.service.Drop(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": enrollmentResponse(enrollment)})
}

// Unenroll DELETE /api/enrollments/user/:userId/course/:courseId.
func (h *EnrollmentsHandler) Unenroll(c *fiber.Ctx) error {
	removed, err := h.service.Unenroll(c.UserContext(), c.Params("userId"), c.Params("courseId"))
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewNotFound("enrollment", map[string]any{
			"user_id":   c.Params("userId"),
			"course_id": c.Params("courseId"),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Count GET /api/enrollments/count.
func (h *EnrollmentsHandler) Count(c *fiber.Ctx) error {
	count, err := h.service.CountAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Count: count}})
}

// CountByCourse GET /api/enrollments/count/course/:courseId.
func (h *EnrollmentsHandler) CountByCourse(c *fiber.Ctx) error {
	count, err := h.service.CountByCourse(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Count: count}})
}

// CountByUser GET /api/enrollments/count/user/:userId.
func (h *EnrollmentsHandler) CountByUser(c *fiber.Ctx) error {
	count, err := h.service.CountByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Count: count}})
}

// CountByStatus GET /api/enrollments/count/status/:status.
func (h *EnrollmentsHandler) CountByStatus(c *fiber.Ctx) error {
	count, err := h.service.CountByStatus(c.UserContext(), c.Params("status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Count: count}})
}

func enrollmentResponse(enrollment *domain.Enrollment) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:                 enrollment.ID,
		UserID:             enrollment.UserID,
		CourseID:           enrollment.CourseID,
		Status:             enrollment.Status,
		ProgressPercentage: enrollment.ProgressPercentage,
		EnrolledAt:         enrollment.EnrolledAt,
		UpdatedAt:          enrollment.UpdatedAt,
		CompletedAt:        enrollment.CompletedAt,
	}
}

func enrollmentResponses(enrollments []domain.Enrollment) []dto.EnrollmentResponse {
	items := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		items = append(items, enrollmentResponse(&enrollments[i]))
	}
	return items
}
