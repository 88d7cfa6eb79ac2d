package response

import (
	"errors"
	"net/http"
	"time"

	"queued-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// now is swapped in tests.
var now = time.Now

type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	Success(c, http.StatusCreated, data)
}

// Accepted is used for transactions that were queued, not applied.
func Accepted(c *gin.Context, data interface{}) {
	Success(c, http.StatusAccepted, data)
}

// Success writes data in the success envelope with the given status.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

// Error writes err in the error envelope. An *apperror.AppError anywhere in
// the chain decides code and status; anything else is a SYS_000 500. The
// full error, internal cause included, is attached to c for the request log.
func Error(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}

	body := ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
		RequestID: requestID(c),
		Timestamp: timestamp(),
	}
	status := http.StatusInternalServerError

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body.ErrorCode = appErr.Code
		body.Message = appErr.Message
		status = appErr.HTTPStatus
	}
	c.JSON(status, body)
}

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}

// requestID falls back to a fresh uuid when the RequestID middleware did
// not run.
func requestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
