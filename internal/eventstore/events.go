package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

// Event type names.
const (
	TypeBuildStarted        = "BuildStarted"
	TypeManifestLoaded      = "ManifestLoaded"
	TypeManifestFailed      = "ManifestFailed"
	TypeDocumentTransformed = "DocumentTransformed"
	TypeBuildCompleted      = "BuildCompleted"
)

// BuildStartedPayload describes the source tree of a build.
type BuildStartedPayload struct {
	Root     string `json:"root"`
	Manifest string `json:"manifest"`
	Mode     string `json:"mode"`
}

// ManifestLoadedPayload is recorded after a successful (re)initialization.
type ManifestLoadedPayload struct {
	Manifest  string `json:"manifest"`
	PageCount int    `json:"page_count"`
	FileCount int    `json:"file_count"`
}

// ManifestFailedPayload is recorded when initialization fails and state is reset.
type ManifestFailedPayload struct {
	Manifest string `json:"manifest"`
	Error    string `json:"error"`
}

// DocumentTransformedPayload is recorded for every managed document.
type DocumentTransformedPayload struct {
	Document   string   `json:"document"`
	Route      string   `json:"route,omitempty"`
	Outcome    string   `json:"outcome"`
	Labels     []string `json:"labels,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// BuildCompletedPayload totals a build.
type BuildCompletedPayload struct {
	Documents   int   `json:"documents"`
	Rewritten   int   `json:"rewritten"`
	Passthrough int   `json:"passthrough"`
	Failed      int   `json:"failed"`
	DurationMS  int64 `json:"duration_ms"`
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, p BuildStartedPayload) (Event, error) {
	return newEvent(buildID, TypeBuildStarted, "", p)
}

// NewManifestLoaded creates a ManifestLoaded event.
func NewManifestLoaded(buildID string, p ManifestLoadedPayload) (Event, error) {
	return newEvent(buildID, TypeManifestLoaded, "", p)
}

// NewManifestFailed creates a ManifestFailed event.
func NewManifestFailed(buildID string, p ManifestFailedPayload) (Event, error) {
	return newEvent(buildID, TypeManifestFailed, "", p)
}

// NewDocumentTransformed creates a DocumentTransformed event.
func NewDocumentTransformed(buildID string, p DocumentTransformedPayload) (Event, error) {
	return newEvent(buildID, TypeDocumentTransformed, p.Document, p)
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, p BuildCompletedPayload) (Event, error) {
	return newEvent(buildID, TypeBuildCompleted, "", p)
}

func newEvent(buildID, eventType, document string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.LedgerError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	return &Record{
		Build: buildID,
		Kind:  eventType,
		Doc:   document,
		At:    time.Now(),
		Data:  data,
	}, nil
}

// Decode unmarshals the payload of e into out.
func Decode(e Event, out any) error {
	if err := json.Unmarshal(e.Payload(), out); err != nil {
		return errors.LedgerError("failed to unmarshal "+e.Type()+" payload").
			WithCause(err).
			WithContext("build_id", e.BuildID()).
			Build()
	}
	return nil
}
