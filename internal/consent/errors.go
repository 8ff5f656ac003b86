package consent

import "fmt"

// MissingClientCredentialsError reports that the provider-issued client
// credentials file (client_secret.json) could not be found or read. This
// is a user-actionable setup error, so the message says where the file was
// expected and how to point gauth at it.
type MissingClientCredentialsError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *MissingClientCredentialsError) Error() string {
	return fmt.Sprintf("missing or unreadable client credentials file at %q "+
		"(download it from your provider's console, then pass --client-secret "+
		"or set GAUTH_CLIENT_SECRET): %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem or parse error.
func (e *MissingClientCredentialsError) Unwrap() error {
	return e.Err
}

// ConsentFailedError reports a consent flow that was started but did not
// yield a credential: the user denied access, the provider rejected the
// exchange, the callback timed out, or the state check failed.
type ConsentFailedError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ConsentFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("consent flow failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("consent flow failed: %s", e.Reason)
}

// Unwrap returns the underlying error, if any.
func (e *ConsentFailedError) Unwrap() error {
	return e.Err
}
