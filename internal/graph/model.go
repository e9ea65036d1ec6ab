package graph

import (
	"encoding/json"
	"time"
)

// Entity is a named node in the knowledge graph. Entities are immutable
// within a snapshot; all mutation happens upstream of this service.
type Entity struct {
	Name         string        `json:"name"`
	EntityType   string        `json:"entityType"`
	Created      time.Time     `json:"created"`
	Updated      *time.Time    `json:"updated,omitempty"`
	Observations []Observation `json:"observations"`
}

// Signature is the attestation attached to a signed observation.
type Signature struct {
	SignatureHex string `json:"signature_hex"`
	Signer       string `json:"signer,omitempty"`
}

// Observation arrives on the wire either as a plain string or as a record
// with text, optional expiry and optional signature. Both forms normalize
// into this struct at decode time.
type Observation struct {
	Text      string     `json:"text"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Signature *Signature `json:"signature,omitempty"`
}

func (o *Observation) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		o.Text = plain
		return nil
	}

	var rich struct {
		Text        string     `json:"text"`
		Observation string     `json:"observation"`
		ExpiresAt   *time.Time `json:"expires_at"`
		Signature   *Signature `json:"signature"`
	}
	if err := json.Unmarshal(data, &rich); err != nil {
		// Malformed observations are tolerated; they just carry no signal.
		return nil
	}

	o.Text = rich.Text
	if o.Text == "" {
		o.Text = rich.Observation
	}
	o.ExpiresAt = rich.ExpiresAt
	o.Signature = rich.Signature
	return nil
}

// Active reports whether the observation has not expired at the given instant.
func (o Observation) Active(now time.Time) bool {
	return o.ExpiresAt == nil || o.ExpiresAt.After(now)
}

// Signed reports whether a non-empty signature is attached.
func (o Observation) Signed() bool {
	return o.Signature != nil && o.Signature.SignatureHex != ""
}

// Relation is a labeled directed edge between two entities. Relations whose
// source or target is not in the snapshot are tolerated and skipped by the
// reputation engine.
type Relation struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Snapshot is the whole graph as read atomically from the store.
type Snapshot struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// Find returns the entity with the given name, or nil.
func (s *Snapshot) Find(name string) *Entity {
	for i := range s.Entities {
		if s.Entities[i].Name == name {
			return &s.Entities[i]
		}
	}
	return nil
}
