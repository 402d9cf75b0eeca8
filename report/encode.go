package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

type amplitudeJSON struct {
	Label string  `json:"label"`
	Re    float64 `json:"re"`
	Im    float64 `json:"im"`
}

type probabilityJSON struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

func (a Amplitude) MarshalJSON() ([]byte, error) {
	return json.Marshal(amplitudeJSON{Label: a.Label, Re: real(a.Value), Im: imag(a.Value)})
}

func (a *Amplitude) UnmarshalJSON(data []byte) error {
	var v amplitudeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.Label = v.Label
	a.Value = complex(v.Re, v.Im)
	return nil
}

func (p Probability) MarshalJSON() ([]byte, error) {
	return json.Marshal(probabilityJSON{Label: p.Label, Probability: p.Value})
}

func (p *Probability) UnmarshalJSON(data []byte) error {
	var v probabilityJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Label = v.Label
	p.Value = v.Probability
	return nil
}

// formatReal writes exact zeros and ones plainly and everything else in
// scientific notation.
func formatReal(v float64) string {
	if v == 0 || v == 1 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'e', -1, 64)
}

func formatComplex(c complex128) string {
	sign := "+"
	im := imag(c)
	if math.Signbit(im) {
		sign = "-"
		im = -im
	}
	return formatReal(real(c)) + sign + formatReal(im) + "i"
}

// Text renders the amplitudes as a bracketed list in ordering order.
func (l AmplitudeList) Text() string {
	parts := make([]string, len(l))
	for i, a := range l {
		parts[i] = formatComplex(a.Value)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Text renders the probabilities as a bracketed list in ordering order.
func (l ProbabilityList) Text() string {
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = formatReal(p.Value)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Text renders the counts as {label: count, ...} in lexical label order.
func (s *ShotCounts) Text() string {
	labels := s.Labels()
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%q: %d", l, s.Counts[l])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
