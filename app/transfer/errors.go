package transfer

import (
	"errors"
	"fmt"

	"nuclight.org/upload-tg-bot/pkg/entities"
)

// HTTPFailureError is returned when the remote server answers the download
// request with anything but 200 OK. Nothing is written to disk in that case.
type HTTPFailureError struct {
	URL        string
	StatusCode int
}

func (e *HTTPFailureError) Error() string {
	return fmt.Sprintf("downloading %s: unexpected status code %d", e.URL, e.StatusCode)
}

// TooLargeError is returned when the downloaded file exceeds the upload
// ceiling. The local file is removed before the error is returned.
type TooLargeError struct {
	Filename string
	Size     int64
	Limit    int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file %s is %d bytes, limit is %d bytes", e.Filename, e.Size, e.Limit)
}

// UploadFailedError wraps a failure of the document upload.
type UploadFailedError struct {
	Filename string
	Err      error
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("uploading %s: %v", e.Filename, e.Err)
}

func (e *UploadFailedError) Unwrap() error {
	return e.Err
}

// OutcomeOf classifies the error returned by Pipeline.Run.
func OutcomeOf(err error) entities.Outcome {
	if err == nil {
		return entities.OutcomeSuccess
	}

	var httpErr *HTTPFailureError
	if errors.As(err, &httpErr) {
		return entities.OutcomeHTTPFailure
	}

	var tooLarge *TooLargeError
	if errors.As(err, &tooLarge) {
		return entities.OutcomeTooLarge
	}

	var uploadErr *UploadFailedError
	if errors.As(err, &uploadErr) {
		return entities.OutcomeUploadFailed
	}

	return entities.OutcomeUnexpected
}
