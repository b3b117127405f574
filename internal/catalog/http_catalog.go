package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

// HTTPCatalog resolves users and courses against the catalog service over
// HTTP. A 404 means the entity does not exist; transport errors and 5xx
// responses surface as errors so the engine can report the dependency as
// unavailable instead of absent.
type HTTPCatalog struct {
	client *resty.Client
}

type courseResponse struct {
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Status   string `json:"status"`
}

// NewHTTPCatalog builds a resty-backed catalog client.
func NewHTTPCatalog(baseURL string, timeout time.Duration) *HTTPCatalog {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &HTTPCatalog{client: client}
}

// UserExists reports whether the user bounded context knows the id.
func (c *HTTPCatalog) UserExists(ctx context.Context, userID string) (bool, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/api/users/" + userID)
	if err != nil {
		return false, fmt.Errorf("catalog user lookup: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusOK:
		return true, nil
	case resp.StatusCode() == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("catalog user lookup: unexpected status %d", resp.StatusCode())
	}
}

// GetCourse fetches the narrow course projection, nil when absent.
func (c *HTTPCatalog) GetCourse(ctx context.Context, courseID string) (*domain.CatalogCourse, error) {
	var body courseResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/api/courses/" + courseID)
	if err != nil {
		return nil, fmt.Errorf("catalog course lookup: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusOK:
		return &domain.CatalogCourse{
			ID:     body.CourseID,
			Title:  body.Title,
			Status: domain.CourseStatus(body.Status),
		}, nil
	case resp.StatusCode() == http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("catalog course lookup: unexpected status %d", resp.StatusCode())
	}
}
