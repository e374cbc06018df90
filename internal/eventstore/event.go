package eventstore

import "time"

// Event is one ledger entry of a build.
type Event interface {
	ID() int64
	BuildID() string
	Type() string
	// Document is the document the event concerns, empty for build and manifest events.
	Document() string
	Timestamp() time.Time
	Payload() []byte
}

// Record is the stored form of an Event. Seq is assigned by the store.
type Record struct {
	Seq   int64
	Build string
	Kind  string
	Doc   string
	At    time.Time
	Data  []byte
}

func (r *Record) ID() int64            { return r.Seq }
func (r *Record) BuildID() string      { return r.Build }
func (r *Record) Type() string         { return r.Kind }
func (r *Record) Document() string     { return r.Doc }
func (r *Record) Timestamp() time.Time { return r.At }
func (r *Record) Payload() []byte      { return r.Data }
