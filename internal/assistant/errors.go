package assistant

import "errors"

var (
	// ErrMissingCredential means no API key is configured. Recoverable by
	// fixing configuration; the service keeps running.
	ErrMissingCredential = errors.New("triage assistant credential is not configured (set OPENAI_API_KEY)")

	// ErrTransport covers network and service-side failures of a turn.
	ErrTransport = errors.New("triage service request failed")

	// ErrMalformedResponse means the payload could not be parsed into the
	// expected schema. Treated as a contract violation, never defaulted.
	ErrMalformedResponse = errors.New("triage service returned a response outside the expected schema")

	// ErrUnclassifiable means the payload parsed but carries neither a usable
	// question set nor a terminal report. The flow must not guess.
	ErrUnclassifiable = errors.New("triage response could not be classified as questions or a final report")
)
