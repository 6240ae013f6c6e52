package constants

// ResponseStatus is the top-level "status" field of API responses.
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "success"
	StatusError   ResponseStatus = "error"
)

// Envelope codes returned to clients. Upstream failures share one code.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUpstreamFailure = "UPSTREAM_FAILURE"
	CodePersistence     = "PERSISTENCE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// DefaultMatchLimit is the number of candidates requested per query when the client omits limit.
const DefaultMatchLimit = 5
