// Package pubsub fans run progress out to observers. Every pipeline run owns
// one topic, keyed by run ID; the executor publishes typed events as nodes
// start, stream, and complete, and subscribers receive them through the Hook
// interface without ever touching executor internals.
package pubsub

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	nodeStartedJSON   = []byte(`{"type":"node_started"}`)
	chunkJSON         = []byte(`{"type":"chunk"}`)
	nodeCompletedJSON = []byte(`{"type":"node_completed"}`)
	copiedJSON        = []byte(`{"type":"copied"}`)
	errorJSON         = []byte(`{"type":"error"}`)
)

type Event interface {
	pubsubEvent()
}

// NodeStarted is published when a node begins executing, before any provider
// call is made.
type NodeStarted struct {
	RunID     uuid.UUID       `json:"run_id"`
	Block     int             `json:"block"`
	ModelID   string          `json:"model_id"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (NodeStarted) pubsubEvent() {}

// Chunk is published for every streaming increment a node receives.
// Accumulated carries the full text after applying the chunk.
type Chunk struct {
	RunID       uuid.UUID       `json:"run_id"`
	Block       int             `json:"block"`
	Delta       string          `json:"delta"`
	Accumulated string          `json:"accumulated"`
	Timestamp   strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Chunk) pubsubEvent() {}

// NodeCompleted is published once a node's result is final, whether the node
// succeeded or terminated with error text.
type NodeCompleted struct {
	RunID     uuid.UUID       `json:"run_id"`
	Block     int             `json:"block"`
	Result    string          `json:"result"`
	Errored   bool            `json:"errored"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (NodeCompleted) pubsubEvent() {}

// CopiedKind tags what a Copied badge refers to.
type CopiedKind string

const (
	CopiedText  CopiedKind = "text"
	CopiedImage CopiedKind = "image"
)

// Copied is the clipboard badge notification. At most one is published per
// node, preferring the text badge when both text and image were copied.
type Copied struct {
	RunID     uuid.UUID       `json:"run_id"`
	Block     int             `json:"block"`
	Kind      CopiedKind      `json:"kind"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Copied) pubsubEvent() {}

// Error is published when a branch aborts: configuration-integrity failures
// and provider errors that became a node's terminal text.
type Error struct {
	RunID     uuid.UUID       `json:"run_id"`
	Block     int             `json:"block"`
	Err       error           `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Error) pubsubEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("run_id: %s, block: %d, error: %v", e.RunID, e.Block, e.Err)
}

// MarshalJSON implements custom JSON marshaling for NodeStarted
func (n NodeStarted) MarshalJSON() ([]byte, error) {
	result := nodeStartedJSON

	var err error
	result, err = sjson.SetBytes(result, "run_id", n.RunID.String())
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "block", n.Block)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "model_id", n.ModelID)
	if err != nil {
		return nil, err
	}
	if !n.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", n.Timestamp.String())
	}
	return result, err
}

// MarshalJSON implements custom JSON marshaling for Chunk
func (c Chunk) MarshalJSON() ([]byte, error) {
	result := chunkJSON

	var err error
	result, err = sjson.SetBytes(result, "run_id", c.RunID.String())
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "block", c.Block)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "delta", c.Delta)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "accumulated", c.Accumulated)
	if err != nil {
		return nil, err
	}
	if !c.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", c.Timestamp.String())
	}
	return result, err
}

// MarshalJSON implements custom JSON marshaling for NodeCompleted
func (n NodeCompleted) MarshalJSON() ([]byte, error) {
	result := nodeCompletedJSON

	var err error
	result, err = sjson.SetBytes(result, "run_id", n.RunID.String())
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "block", n.Block)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "result", n.Result)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "errored", n.Errored)
	if err != nil {
		return nil, err
	}
	if !n.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", n.Timestamp.String())
	}
	return result, err
}

// MarshalJSON implements custom JSON marshaling for Copied
func (c Copied) MarshalJSON() ([]byte, error) {
	result := copiedJSON

	var err error
	result, err = sjson.SetBytes(result, "run_id", c.RunID.String())
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "block", c.Block)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "kind", string(c.Kind))
	if err != nil {
		return nil, err
	}
	if !c.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", c.Timestamp.String())
	}
	return result, err
}

// MarshalJSON implements custom JSON marshaling for Error
func (e Error) MarshalJSON() ([]byte, error) {
	result := errorJSON

	var err error
	result, err = sjson.SetBytes(result, "run_id", e.RunID.String())
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "block", e.Block)
	if err != nil {
		return nil, err
	}
	if e.Err != nil {
		result, err = sjson.SetBytes(result, "error", e.Err.Error())
		if err != nil {
			return nil, err
		}
	}
	if !e.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", e.Timestamp.String())
	}
	return result, err
}

// UnmarshalJSON implements custom JSON unmarshaling for Chunk
func (c *Chunk) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "chunk" {
		return fmt.Errorf("missing or invalid type, expected 'chunk'")
	}

	runID := gjson.GetBytes(data, "run_id")
	if !runID.Exists() {
		return fmt.Errorf("missing required field 'run_id'")
	}
	if err := c.RunID.UnmarshalText([]byte(runID.String())); err != nil {
		return fmt.Errorf("invalid run_id: %w", err)
	}

	c.Block = int(gjson.GetBytes(data, "block").Int())
	c.Delta = gjson.GetBytes(data, "delta").String()
	c.Accumulated = gjson.GetBytes(data, "accumulated").String()

	if ts := gjson.GetBytes(data, "timestamp"); ts.Exists() {
		if err := c.Timestamp.UnmarshalText([]byte(ts.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}
	return nil
}

// UnmarshalJSON implements custom JSON unmarshaling for NodeCompleted
func (n *NodeCompleted) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "node_completed" {
		return fmt.Errorf("missing or invalid type, expected 'node_completed'")
	}

	runID := gjson.GetBytes(data, "run_id")
	if !runID.Exists() {
		return fmt.Errorf("missing required field 'run_id'")
	}
	if err := n.RunID.UnmarshalText([]byte(runID.String())); err != nil {
		return fmt.Errorf("invalid run_id: %w", err)
	}

	n.Block = int(gjson.GetBytes(data, "block").Int())
	n.Result = gjson.GetBytes(data, "result").String()
	n.Errored = gjson.GetBytes(data, "errored").Bool()

	if ts := gjson.GetBytes(data, "timestamp"); ts.Exists() {
		if err := n.Timestamp.UnmarshalText([]byte(ts.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}
	return nil
}
