package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error carries a stable machine-readable kind, the HTTP status it maps to,
// and a human message. Every rejection the service produces is one of these;
// anything else is treated as a storage failure.
type Error struct {
	Kind    string `json:"kind"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Kind + ": " + e.Message }

const (
	KindForbidden        = "forbidden"
	KindNoFile           = "no_file"
	KindBadUpload        = "upload_error"
	KindFileTooLarge     = "file_too_large"
	KindDurationExceeded = "duration_exceeded"
	KindQuotaVideos      = "quota_videos"
	KindQuotaStorage     = "quota_storage"
	KindUnsupportedType  = "bad_mime"
	KindNotOwner         = "not_owner"
	KindNotFound         = "not_found"
	KindStoreFailure     = "store_failure"
)

func ErrForbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: fiber.StatusForbidden, Message: msg}
}

func ErrNoFile() *Error {
	return &Error{Kind: KindNoFile, Status: fiber.StatusBadRequest, Message: "No file provided"}
}

func ErrBadUpload() *Error {
	return &Error{Kind: KindBadUpload, Status: fiber.StatusBadRequest, Message: "Upload failed"}
}

func ErrFileTooLarge(maxMB int64) *Error {
	return &Error{
		Kind:    KindFileTooLarge,
		Status:  fiber.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("File exceeds your plan's file size limit (max %dMB).", maxMB),
	}
}

func ErrDurationExceeded(maxSecs int) *Error {
	return &Error{
		Kind:    KindDurationExceeded,
		Status:  fiber.StatusBadRequest,
		Message: fmt.Sprintf("Recorded videos must be <= %d seconds.", maxSecs),
	}
}

func ErrQuotaVideos() *Error {
	return &Error{Kind: KindQuotaVideos, Status: fiber.StatusForbidden, Message: "You have reached your plan's video limit."}
}

func ErrQuotaStorage() *Error {
	return &Error{Kind: KindQuotaStorage, Status: fiber.StatusForbidden, Message: "Uploading this would exceed your plan's total storage limit."}
}

func ErrUnsupportedType() *Error {
	return &Error{Kind: KindUnsupportedType, Status: fiber.StatusUnsupportedMediaType, Message: "Only video files are allowed."}
}

func ErrNotOwner(action string) *Error {
	return &Error{
		Kind:    KindNotOwner,
		Status:  fiber.StatusForbidden,
		Message: fmt.Sprintf("Cannot %s a video you do not own.", action),
	}
}

func ErrNotFound() *Error {
	return &Error{Kind: KindNotFound, Status: fiber.StatusNotFound, Message: "Video not found"}
}

func ErrStoreFailure(err error) *Error {
	return &Error{Kind: KindStoreFailure, Status: fiber.StatusInternalServerError, Message: err.Error()}
}

// AsError normalizes any error to *Error, wrapping unknown ones as a
// store failure.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrStoreFailure(err)
}
