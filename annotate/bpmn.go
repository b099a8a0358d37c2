package annotate

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jt05610/dpn"
)

const (
	BPMNNamespace        = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	ProbabilityNamespace = "http://example.com/probability"
	TimeNamespace        = "http://example.com/time"
)

func attr(el xml.StartElement, space, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func parseFloat(el, id, name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %s: bad %s %q: %w", el, id, name, v, err)
	}
	return f, nil
}

// ParseBPMN extracts the probability and timing extension attributes from a
// BPMN 2.0 document. Sequence flows need an id, a targetRef and a
// probability; tasks need an id and both timeMin and timeMax. Elements
// missing any of these are skipped.
func ParseBPMN(r io.Reader) (*Payload, error) {
	p := NewPayload()
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read bpmn: %w", err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Space != BPMNNamespace {
			continue
		}
		id, _ := attr(el, "", "id")
		if id == "" {
			continue
		}
		switch el.Name.Local {
		case "sequenceFlow":
			prob, hasProb := attr(el, ProbabilityNamespace, "probability")
			target, hasTarget := attr(el, "", "targetRef")
			if !hasProb || !hasTarget || target == "" {
				continue
			}
			v, err := parseFloat("sequenceFlow", id, "probability", prob)
			if err != nil {
				return nil, err
			}
			p.Probabilities[id] = v
			p.Targets[id] = target
		case "task":
			lo, hasMin := attr(el, TimeNamespace, "timeMin")
			hi, hasMax := attr(el, TimeNamespace, "timeMax")
			if !hasMin || !hasMax {
				continue
			}
			min, err := parseFloat("task", id, "timeMin", lo)
			if err != nil {
				return nil, err
			}
			max, err := parseFloat("task", id, "timeMax", hi)
			if err != nil {
				return nil, err
			}
			p.Durations[id] = dpn.Interval{Min: min, Max: max}
		}
	}
}
