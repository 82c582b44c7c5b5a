package entities

type Outcome string

const (
	// OutcomeSuccess means the file was downloaded and uploaded
	OutcomeSuccess Outcome = "success"

	// OutcomeHTTPFailure means the remote server answered with a non-200 status
	OutcomeHTTPFailure Outcome = "http_failure"

	// OutcomeTooLarge means the downloaded file exceeded the upload ceiling
	OutcomeTooLarge Outcome = "too_large"

	// OutcomeUploadFailed means sending the document to the chat failed
	OutcomeUploadFailed Outcome = "upload_failed"

	// OutcomeUnexpected covers every other failure
	OutcomeUnexpected Outcome = "unexpected"
)
