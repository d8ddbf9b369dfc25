package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type bookingBody struct {
	ItemID int64             `json:"itemId" binding:"required,gt=0"`
	Start  *models.Timestamp `json:"start" binding:"required"`
	End    *models.Timestamp `json:"end" binding:"required"`
}

type itemCreateBody struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"requestId"`
}

type itemPatchBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type userCreateBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type userPatchBody struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

type commentBody struct {
	Text string `json:"text" binding:"required"`
}

type requestBody struct {
	Description string `json:"description" binding:"required"`
}

// validationError is answered with 400 before the backend is contacted.
type validationError struct {
	reason  string
	message string
}

func (e *validationError) Error() string { return e.message }

func invalid(reason, message string) *validationError {
	return &validationError{reason: reason, message: message}
}

func bindBody(body []byte, out any) *validationError {
	if len(body) == 0 {
		return invalid("body", "request body is required")
	}
	if err := binding.JSON.BindBody(body, out); err != nil {
		return invalid("body", err.Error())
	}
	return nil
}

func notBlank(field, value string) *validationError {
	if strings.TrimSpace(value) == "" {
		return invalid("body", field+" must not be blank")
	}
	return nil
}

func validateBooking(body []byte, now time.Time) *validationError {
	var b bookingBody
	if err := bindBody(body, &b); err != nil {
		return err
	}
	if b.Start.Before(now) {
		return invalid("booking_dates", "start must not be in the past")
	}
	if !b.End.After(now) {
		return invalid("booking_dates", "end must be in the future")
	}
	return nil
}

func validateItemCreate(body []byte) *validationError {
	var b itemCreateBody
	if err := bindBody(body, &b); err != nil {
		return err
	}
	if err := notBlank("name", b.Name); err != nil {
		return err
	}
	return notBlank("description", b.Description)
}

func validateItemPatch(body []byte) *validationError {
	var b itemPatchBody
	return bindBody(body, &b)
}

func validateUserCreate(body []byte) *validationError {
	var b userCreateBody
	if err := bindBody(body, &b); err != nil {
		return err
	}
	return notBlank("name", b.Name)
}

func validateUserPatch(body []byte) *validationError {
	var b userPatchBody
	return bindBody(body, &b)
}

func validateComment(body []byte) *validationError {
	var b commentBody
	if err := bindBody(body, &b); err != nil {
		return err
	}
	return notBlank("text", b.Text)
}

func validateRequest(body []byte) *validationError {
	var b requestBody
	if err := bindBody(body, &b); err != nil {
		return err
	}
	return notBlank("description", b.Description)
}

// validatePage checks optional from and size query parameters.
func validatePage(c *gin.Context) *validationError {
	if raw, ok := c.GetQuery("from"); ok {
		from, err := strconv.Atoi(raw)
		if err != nil || from < 0 {
			return invalid("page", "from must be a non-negative number")
		}
	}
	if raw, ok := c.GetQuery("size"); ok {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return invalid("page", "size must be a positive number")
		}
	}
	return nil
}

func validateState(c *gin.Context) *validationError {
	raw, ok := c.GetQuery("state")
	if !ok {
		return nil
	}
	if models.ParseBookingFilter(raw) == models.FilterUnknown {
		return invalid("state", "Unknown state: UNSUPPORTED_STATUS")
	}
	return nil
}

func validateApproved(c *gin.Context) *validationError {
	if _, err := strconv.ParseBool(c.Query("approved")); err != nil {
		return invalid("approved", "approved must be true or false")
	}
	return nil
}

func validateUserHeader(c *gin.Context) *validationError {
	raw := strings.TrimSpace(c.GetHeader(models.UserIDHeader))
	if raw == "" {
		return invalid("identity", "header "+models.UserIDHeader+" is required")
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return invalid("identity", "header "+models.UserIDHeader+" must be a number")
	}
	return nil
}

func validatePathID(c *gin.Context) *validationError {
	if _, err := strconv.ParseInt(c.Param("id"), 10, 64); err != nil {
		return invalid("path", "invalid id "+strconv.Quote(c.Param("id")))
	}
	return nil
}

func abortInvalid(c *gin.Context, err *validationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.message})
}
