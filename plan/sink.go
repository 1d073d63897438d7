package plan

import (
	"encoding/json"
	"fmt"

	"github.com/planardb/planar/common"
)

// SinkTarget is the destination payload of a Sink node.
type SinkTarget interface {
	fmt.Stringer
	sinkTarget()
}

// MemorySink collects the result in memory.
type MemorySink struct{}

// FileSink writes the result to a file.
type FileSink struct {
	Path   string     `json:"path"`
	Format FileFormat `json:"format"`
}

func (MemorySink) sinkTarget() {}
func (FileSink) sinkTarget()   {}

func (MemorySink) String() string {
	return "memory"
}

func (f FileSink) String() string {
	return fmt.Sprintf("file: %s, %s", f.Path, f.Format)
}

func sinkTargetName(t SinkTarget) string {
	switch t.(type) {
	case MemorySink:
		return "Memory"
	case FileSink:
		return "File"
	}
	common.Assert(false, "unknown sink target %T", t)
	return ""
}

type sinkEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encodeSinkTarget(t SinkTarget) (json.RawMessage, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sinkEnvelope{Kind: sinkTargetName(t), Payload: payload})
}

func decodeSinkTarget(data json.RawMessage) (SinkTarget, error) {
	var env sinkEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "Memory":
		return MemorySink{}, nil
	case "File":
		var v FileSink
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, common.Errorf(common.SerializeError, "unknown sink target tag %q", env.Kind)
}

func (s Sink) MarshalJSON() ([]byte, error) {
	target, err := encodeSinkTarget(s.Target)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Input  common.Node     `json:"input"`
		Target json.RawMessage `json:"target"`
	}{s.Input, target})
}

func (s *Sink) UnmarshalJSON(data []byte) error {
	var raw struct {
		Input  common.Node     `json:"input"`
		Target json.RawMessage `json:"target"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	target, err := decodeSinkTarget(raw.Target)
	if err != nil {
		return err
	}
	s.Input = raw.Input
	s.Target = target
	return nil
}
