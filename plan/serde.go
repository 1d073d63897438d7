package plan

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
)

// nodeEnvelope tags one operator arena entry on the wire.
type nodeEnvelope struct {
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// planJSON is the wire form of a whole plan: both arenas in insertion order,
// so handles double as array indices, plus the root handle.
type planJSON struct {
	Root  common.Node       `json:"root"`
	Nodes []json.RawMessage `json:"nodes"`
	Exprs []json.RawMessage `json:"exprs"`
}

func (p Plan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		Root:  p.root,
		Nodes: make([]json.RawMessage, 0, p.irs.Len()),
		Exprs: make([]json.RawMessage, 0, p.exprs.Len()),
	}
	for i := 0; i < p.irs.Len(); i++ {
		raw, err := encodeIR(p.irs.Get(common.Node(i)))
		if err != nil {
			return nil, fmt.Errorf("plan node %d: %w", i, err)
		}
		out.Nodes = append(out.Nodes, raw)
	}
	for i := 0; i < p.exprs.Len(); i++ {
		raw, err := expr.EncodeAExpr(p.exprs.Get(common.Node(i)))
		if err != nil {
			return nil, fmt.Errorf("plan expression %d: %w", i, err)
		}
		out.Exprs = append(out.Exprs, raw)
	}
	return json.Marshal(out)
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	var in planJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	irs := common.NewArenaWithCapacity[IR](len(in.Nodes))
	for i, raw := range in.Nodes {
		op, err := decodeIR(raw)
		if err != nil {
			return fmt.Errorf("plan node %d: %w", i, err)
		}
		irs.Add(op)
	}
	exprs := common.NewArenaWithCapacity[expr.AExpr](len(in.Exprs))
	for i, raw := range in.Exprs {
		e, err := expr.DecodeAExpr(raw)
		if err != nil {
			return fmt.Errorf("plan expression %d: %w", i, err)
		}
		exprs.Add(e)
	}
	if err := validateDecoded(in.Root, irs, exprs); err != nil {
		return err
	}
	p.root = in.Root
	p.irs = irs
	p.exprs = exprs
	return nil
}

// encodeIR wraps one operator in its tagged envelope. Invalid is not
// serializable: no constructor in this module produces it, so finding one in
// an arena being saved means the arena was built outside the module's
// contracts.
func encodeIR(op IR) (json.RawMessage, error) {
	if _, ok := op.(Invalid); ok {
		return nil, common.Errorf(common.SerializeError, "plan contains an invalid node")
	}
	payload, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeEnvelope{Op: OpName(op), Payload: payload})
}

func decodeIR(data json.RawMessage) (IR, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	var (
		op  IR
		err error
	)
	switch env.Op {
	case "Slice":
		var v Slice
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Filter":
		var v Filter
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Scan":
		var v Scan
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "DataFrameScan":
		var v DataFrameScan
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "PlaceholderScan":
		var v PlaceholderScan
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "SimpleProjection":
		var v SimpleProjection
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Select":
		var v Select
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Sort":
		var v Sort
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Cache":
		var v Cache
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "GroupBy":
		var v GroupBy
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Join":
		var v Join
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "HStack":
		var v HStack
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Distinct":
		var v Distinct
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "MapFunction":
		var v MapFunction
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Union":
		var v Union
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "HConcat":
		var v HConcat
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "ExtContext":
		var v ExtContext
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Sink":
		var v Sink
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "SinkMultiple":
		var v SinkMultiple
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "MergeSorted":
		var v MergeSorted
		err = json.Unmarshal(env.Payload, &v)
		op = v
	case "Invalid":
		return nil, common.Errorf(common.SerializeError, "plan contains an invalid node")
	default:
		return nil, common.Errorf(common.SerializeError, "unknown operator tag %q", env.Op)
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// validateDecoded structurally checks a deserialized plan: the root and
// every handle must resolve, and handles must point strictly downward in the
// arena (children precede parents). Every builder in this module produces
// that ordering, and requiring it on the way in guarantees that traversals
// of decoded plans terminate.
func validateDecoded(root common.Node, irs *common.Arena[IR], exprs *common.Arena[expr.AExpr]) error {
	if root < 0 || int(root) >= irs.Len() {
		return common.Errorf(common.SerializeError,
			"root %d out of range, plan has %d nodes", root, irs.Len())
	}

	var inputBuf []common.Node
	var exprBuf []expr.ExprIR
	for i := 0; i < irs.Len(); i++ {
		op := irs.Get(common.Node(i))
		inputBuf = Inputs(op, inputBuf[:0])
		for _, in := range inputBuf {
			if in < 0 || in >= common.Node(i) {
				return common.Errorf(common.SerializeError,
					"node %d references input %d; inputs must precede their consumer", i, in)
			}
		}
		exprBuf = ExprRefs(op, exprBuf[:0])
		for _, e := range exprBuf {
			if e.Node < 0 || int(e.Node) >= exprs.Len() {
				return common.Errorf(common.SerializeError,
					"node %d references expression %d, arena has %d", i, e.Node, exprs.Len())
			}
		}
	}

	checkExprHandle := func(owner int, n common.Node) error {
		if n < 0 || n >= common.Node(owner) {
			return common.Errorf(common.SerializeError,
				"expression %d references node %d; operands must precede their consumer", owner, n)
		}
		return nil
	}
	for i := 0; i < exprs.Len(); i++ {
		switch e := exprs.Get(common.Node(i)).(type) {
		case expr.BinaryExpr:
			if err := checkExprHandle(i, e.Left); err != nil {
				return err
			}
			if err := checkExprHandle(i, e.Right); err != nil {
				return err
			}
		case expr.Agg:
			if err := checkExprHandle(i, e.Input); err != nil {
				return err
			}
		case expr.Cast:
			if err := checkExprHandle(i, e.Input); err != nil {
				return err
			}
		}
	}
	return nil
}

// Binary plan files carry a fixed little-endian header in front of the JSON
// body: magic, format version, reserved flags, CRC-32 of the body, body
// length. The header makes files self-identifying, version-checked, and
// integrity-checked; the JSON body stays the single canonical encoding. The
// byte layout is not a compatibility promise beyond the version check.
const (
	binaryMagic = "PLNR"

	// FormatVersion is bumped whenever the serialized layout changes
	// incompatibly. Readers reject anything newer than they understand.
	FormatVersion uint16 = 1
)

const (
	offsetMagic   = 0
	offsetVersion = 4
	offsetFlags   = 6
	offsetCRC     = 8
	offsetBodyLen = 12
	headerSize    = 20

	// maxBodyBytes caps the decoded body allocation so a corrupt length
	// field cannot ask for absurd memory.
	maxBodyBytes = 1 << 30
)

// WriteBinary writes the plan in the versioned binary form.
func (p Plan) WriteBinary(w io.Writer) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	header := make([]byte, headerSize)
	copy(header[offsetMagic:], binaryMagic)
	binary.LittleEndian.PutUint16(header[offsetVersion:], FormatVersion)
	binary.LittleEndian.PutUint16(header[offsetFlags:], 0)
	binary.LittleEndian.PutUint32(header[offsetCRC:], crc32.ChecksumIEEE(body))
	binary.LittleEndian.PutUint64(header[offsetBodyLen:], uint64(len(body)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing plan header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing plan body: %w", err)
	}
	return nil
}

// ReadBinary reads a plan written by WriteBinary, rejecting wrong magic,
// unsupported versions, and bodies that fail the checksum.
func ReadBinary(r io.Reader) (Plan, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Plan{}, fmt.Errorf("reading plan header: %w", err)
	}
	if string(header[offsetMagic:offsetMagic+4]) != binaryMagic {
		return Plan{}, common.Errorf(common.SerializeError, "not a plan file: bad magic")
	}
	version := binary.LittleEndian.Uint16(header[offsetVersion:])
	if version == 0 || version > FormatVersion {
		return Plan{}, common.Errorf(common.SerializeError,
			"plan format version %d is not supported (reader handles up to %d)", version, FormatVersion)
	}
	bodyLen := binary.LittleEndian.Uint64(header[offsetBodyLen:])
	if bodyLen > maxBodyBytes {
		return Plan{}, common.Errorf(common.SerializeError, "plan body length %d exceeds limit", bodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Plan{}, fmt.Errorf("reading plan body: %w", err)
	}
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(header[offsetCRC:]) {
		return Plan{}, common.Errorf(common.SerializeError, "plan body checksum mismatch")
	}

	var p Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// WriteJSON writes the plan in the textual form.
func (p Plan) WriteJSON(w io.Writer) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}

// ReadJSON reads a plan written by WriteJSON.
func ReadJSON(r io.Reader) (Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Plan{}, fmt.Errorf("reading plan: %w", err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, err
	}
	return p, nil
}
