package lazy

import (
	"io"

	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/plan"
)

// SerializeBinary writes the plan built so far in the versioned binary form.
func (lf LazyFrame) SerializeBinary(w io.Writer) error {
	p, err := lf.Plan()
	if err != nil {
		return err
	}
	return p.WriteBinary(w)
}

// SerializeJSON writes the plan built so far as JSON.
func (lf LazyFrame) SerializeJSON(w io.Writer) error {
	p, err := lf.Plan()
	if err != nil {
		return err
	}
	return p.WriteJSON(w)
}

// SerializeTemplate strips the in-memory data out of the plan and writes the
// resulting template in the versioned binary form.
func (lf LazyFrame) SerializeTemplate(w io.Writer) error {
	p, err := lf.Plan()
	if err != nil {
		return err
	}
	return p.ToTemplate().WriteBinary(w)
}

// DeserializeBinary reads a versioned binary plan and resumes building on
// top of it.
func DeserializeBinary(r io.Reader) (LazyFrame, error) {
	p, err := plan.ReadBinary(r)
	if err != nil {
		return LazyFrame{}, err
	}
	return FromPlan(p), nil
}

// DeserializeJSON reads a JSON plan and resumes building on top of it.
func DeserializeJSON(r io.Reader) (LazyFrame, error) {
	p, err := plan.ReadJSON(r)
	if err != nil {
		return LazyFrame{}, err
	}
	return FromPlan(p), nil
}

// DeserializeTemplateAndBind reads a versioned binary template and binds
// every placeholder in it to df.
func DeserializeTemplateAndBind(r io.Reader, df *frame.DataFrame) (LazyFrame, error) {
	p, err := plan.ReadBinary(r)
	if err != nil {
		return LazyFrame{}, err
	}
	bound, err := p.BindToFrame(df)
	if err != nil {
		return LazyFrame{}, err
	}
	return FromPlan(bound), nil
}
