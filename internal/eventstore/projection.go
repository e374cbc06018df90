package eventstore

import "time"

const (
	buildStatusRunning   = "running"
	buildStatusCompleted = "completed"
)

// BuildSummary is the read model of one build, reconstructed from its events.
type BuildSummary struct {
	BuildID       string        `json:"build_id"`
	Status        string        `json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	Root          string        `json:"root,omitempty"`
	PageCount     int           `json:"page_count"`
	ManifestError string        `json:"manifest_error,omitempty"`
	Rewritten     int           `json:"rewritten"`
	Passthrough   int           `json:"passthrough"`
	Failed        int           `json:"failed"`
	// FailedDocuments maps a document to its diagnostics.
	FailedDocuments map[string][]string `json:"failed_documents,omitempty"`
}

// Summarize folds the events of one build into a BuildSummary.
// Events of other builds are ignored.
func Summarize(buildID string, events []Event) (*BuildSummary, error) {
	summary := &BuildSummary{BuildID: buildID, Status: buildStatusRunning}
	for _, event := range events {
		if event.BuildID() != buildID {
			continue
		}
		if summary.StartedAt.IsZero() {
			summary.StartedAt = event.Timestamp()
		}
		if err := summary.apply(event); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func (s *BuildSummary) apply(event Event) error {
	switch event.Type() {
	case TypeBuildStarted:
		var p BuildStartedPayload
		if err := Decode(event, &p); err != nil {
			return err
		}
		s.StartedAt = event.Timestamp()
		s.Root = p.Root

	case TypeManifestLoaded:
		var p ManifestLoadedPayload
		if err := Decode(event, &p); err != nil {
			return err
		}
		s.PageCount = p.PageCount
		s.ManifestError = ""

	case TypeManifestFailed:
		var p ManifestFailedPayload
		if err := Decode(event, &p); err != nil {
			return err
		}
		s.PageCount = 0
		s.ManifestError = p.Error

	case TypeDocumentTransformed:
		var p DocumentTransformedPayload
		if err := Decode(event, &p); err != nil {
			return err
		}
		switch p.Outcome {
		case "rewritten":
			s.Rewritten++
		case "passthrough":
			s.Passthrough++
		case "failed":
			s.Failed++
			if s.FailedDocuments == nil {
				s.FailedDocuments = make(map[string][]string)
			}
			s.FailedDocuments[p.Document] = p.Errors
		}

	case TypeBuildCompleted:
		completed := event.Timestamp()
		s.Status = buildStatusCompleted
		s.CompletedAt = &completed
		s.Duration = completed.Sub(s.StartedAt)
	}
	return nil
}
