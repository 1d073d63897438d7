package expr

import (
	"encoding/json"

	"github.com/planardb/planar/common"
)

// envelope is the wire form of one arena entry: the variant tag plus the
// variant's own fields.
type envelope struct {
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeAExpr serializes a single expression node.
func EncodeAExpr(e AExpr) (json.RawMessage, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Op: OpName(e), Payload: payload})
}

// DecodeAExpr deserializes a single expression node. Unknown tags are
// errors: the variant set is closed and forward compatibility is handled by
// the plan-level format version, not by skipping nodes.
func DecodeAExpr(data json.RawMessage) (AExpr, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Op {
	case "Column":
		var v Column
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Literal":
		var v Literal
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "BinaryExpr":
		var v BinaryExpr
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Agg":
		var v Agg
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Cast":
		var v Cast
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, common.Errorf(common.SerializeError, "unknown expression tag %q", env.Op)
}
