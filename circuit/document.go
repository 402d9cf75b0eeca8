package circuit

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Document is the exchanged circuit format. Field names are part of the
// persisted schema and must not change.
type Document struct {
	Steps []StepDocument `json:"steps"`
}

// StepDocument is one entry of the steps array.
type StepDocument struct {
	Index int            `json:"index"`
	Gates []GateDocument `json:"gates"`
}

// GateDocument is one gate application inside a step.
type GateDocument struct {
	Name    string   `json:"name"`
	Target  int      `json:"target"`
	Target2 *int     `json:"target2,omitempty"`
	Control *int     `json:"control,omitempty"`
	Phi     *float64 `json:"phi,omitempty"`
	Theta   *float64 `json:"theta,omitempty"`
	Lambda  *float64 `json:"lambda,omitempty"`
	Root    *string  `json:"root,omitempty"`
}

// The raw shapes only exist to tell a missing key from a zero value.
type rawDocument struct {
	Steps *[]rawStep `json:"steps"`
}

type rawStep struct {
	Index *int       `json:"index"`
	Gates *[]rawGate `json:"gates"`
}

type rawGate struct {
	Name    *string  `json:"name"`
	Target  *int     `json:"target"`
	Target2 *int     `json:"target2"`
	Control *int     `json:"control"`
	Phi     *float64 `json:"phi"`
	Theta   *float64 `json:"theta"`
	Lambda  *float64 `json:"lambda"`
	Root    *string  `json:"root"`
}

// Decode reads a circuit document and checks that every required field is present.
// Unknown fields are ignored.
func Decode(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, decodeError(err)
	}
	if raw.Steps == nil {
		return nil, &MalformedCircuitError{Field: "steps", Reason: "missing"}
	}

	doc := &Document{Steps: make([]StepDocument, 0, len(*raw.Steps))}
	for i, rs := range *raw.Steps {
		stepField := fmt.Sprintf("steps[%d]", i)
		if rs.Index == nil {
			return nil, &MalformedCircuitError{Field: stepField + ".index", Reason: "missing"}
		}
		if *rs.Index < 0 {
			return nil, &MalformedCircuitError{Field: stepField + ".index", Reason: fmt.Sprintf("negative value %d", *rs.Index)}
		}
		if rs.Gates == nil {
			return nil, &MalformedCircuitError{Field: stepField + ".gates", Reason: "missing"}
		}

		step := StepDocument{Index: *rs.Index, Gates: make([]GateDocument, 0, len(*rs.Gates))}
		for j, rg := range *rs.Gates {
			gateField := fmt.Sprintf("%s.gates[%d]", stepField, j)
			if rg.Name == nil {
				return nil, &MalformedCircuitError{Field: gateField + ".name", Reason: "missing"}
			}
			if rg.Target == nil {
				return nil, &MalformedCircuitError{Field: gateField + ".target", Reason: "missing"}
			}
			step.Gates = append(step.Gates, GateDocument{
				Name:    *rg.Name,
				Target:  *rg.Target,
				Target2: rg.Target2,
				Control: rg.Control,
				Phi:     rg.Phi,
				Theta:   rg.Theta,
				Lambda:  rg.Lambda,
				Root:    rg.Root,
			})
		}
		doc.Steps = append(doc.Steps, step)
	}
	return doc, nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "document"
		}
		return &MalformedCircuitError{
			Field:  field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Err:    err,
		}
	}
	return &MalformedCircuitError{Field: "document", Reason: err.Error(), Err: err}
}

// Encode serialises the document in the exchanged format.
func (d *Document) Encode() ([]byte, error) {
	steps := d.Steps
	if steps == nil {
		steps = []StepDocument{}
	}
	return json.Marshal(Document{Steps: steps})
}

// EncodeIndent is Encode with two-space indentation.
func (d *Document) EncodeIndent() ([]byte, error) {
	steps := d.Steps
	if steps == nil {
		steps = []StepDocument{}
	}
	return json.MarshalIndent(Document{Steps: steps}, "", "  ")
}

// Width returns one more than the highest qubit index referenced, which is the
// smallest register the document fits in.
func (d *Document) Width() int {
	width := 0
	for _, step := range d.Steps {
		for _, g := range step.Gates {
			width = max(width, g.Target+1)
			if g.Target2 != nil {
				width = max(width, *g.Target2+1)
			}
			if g.Control != nil {
				width = max(width, *g.Control+1)
			}
		}
	}
	return width
}
