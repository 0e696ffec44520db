package events

import "regexp"

const (
	SubjectBuildRequest   = "rigger.build.request"
	SubjectCatalogUpdated = "rigger.catalog.updated"

	StreamName   = "RIGGER_EVENTS"
	StreamMaxAge = "168h" // 7 days
	QueueGroup   = "rigger"
)

func SubjectBuildRecommended(requestID string) string {
	return "rigger.build." + requestID + ".recommended"
}

func SubjectBuildFailed(requestID string) string { return "rigger.build." + requestID + ".failed" }

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidRequestID reports whether id fits in a single subject token. Ids with dots,
// spaces or wildcards would publish results outside the stream's subjects.
func ValidRequestID(id string) bool {
	return requestIDPattern.MatchString(id)
}
