package domain

import "errors"

var (
	ErrDraftNotFound       = errors.New("draft not found")
	ErrBatchNotFound       = errors.New("batch not found")
	ErrDraftConflict       = errors.New("draft was modified by another editor")
	ErrUnknownFieldPath    = errors.New("unknown correction field path")
	ErrInvalidFieldValue   = errors.New("value does not match field type")
	ErrCollectionFieldPath = errors.New("collection fields require a bulk replacement")
	ErrNoActiveSession     = errors.New("no active editing session for draft")
	ErrFileNotFound        = errors.New("file not attached to draft")
	ErrInvalidStatus       = errors.New("invalid draft status")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyBatch          = errors.New("batch submission requires at least one file")
	ErrValidationBlocked   = errors.New("draft has validation issues blocking submission")
	ErrPipelineUnavailable = errors.New("extraction pipeline unavailable")
	ErrTrackingStalled     = errors.New("batch progress tracking stalled")
)
