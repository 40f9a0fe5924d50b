package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type fileScenario struct {
	Name               string     `yaml:"name"`
	InterActionDelayMs int64      `yaml:"interActionDelayMs"`
	InterStepDelayMs   int64      `yaml:"interStepDelayMs"`
	Steps              []fileStep `yaml:"steps"`
}

type fileStep struct {
	Name                 string       `yaml:"name"`
	Skip                 bool         `yaml:"skip"`
	CaptureHTMLOnSuccess *bool        `yaml:"captureHtmlOnSuccess"`
	OutputHTMLToFile     *bool        `yaml:"outputHtmlToFile"`
	Actions              []fileAction `yaml:"actions"`
}

type fileAction struct {
	Type         string        `yaml:"type"`
	Target       string        `yaml:"target"`
	Value        string        `yaml:"value"`
	Frame        yaml.Node     `yaml:"frame"`
	Expected     *fileExpected `yaml:"expected"`
	SleepAfterMs int64         `yaml:"sleepAfterMs"`
	Label        string        `yaml:"label"`
}

type fileExpected struct {
	Equals  *string `yaml:"equals"`
	Pattern *string `yaml:"pattern"`
}

// Load reads and parses the scenario file at path.
func Load(fs afero.Fs, path string) (*Scenario, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read scenario file %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario file %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a YAML or JSON scenario document.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fsc fileScenario
	if err := dec.Decode(&fsc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario is empty")
		}
		return nil, err
	}

	if fsc.InterActionDelayMs < 0 || fsc.InterStepDelayMs < 0 {
		return nil, errors.New("delays must not be negative")
	}

	sc := &Scenario{
		Name:             fsc.Name,
		InterActionDelay: millis(fsc.InterActionDelayMs),
		InterStepDelay:   millis(fsc.InterStepDelayMs),
		Steps:            make([]Step, 0, len(fsc.Steps)),
	}
	for i, fst := range fsc.Steps {
		step, err := fst.toStep()
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, fst.Name, err)
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func (fst fileStep) toStep() (Step, error) {
	step := Step{
		Name:    fst.Name,
		Skip:    fst.Skip,
		Actions: make([]Action, 0, len(fst.Actions)),
	}
	switch {
	case fst.CaptureHTMLOnSuccess != nil:
		step.CaptureHTMLOnSuccess = *fst.CaptureHTMLOnSuccess
	case fst.OutputHTMLToFile != nil:
		step.CaptureHTMLOnSuccess = *fst.OutputHTMLToFile
	}

	for i, fa := range fst.Actions {
		a, err := fa.toAction()
		if err != nil {
			return Step{}, fmt.Errorf("action %d: %w", i+1, err)
		}
		step.Actions = append(step.Actions, a)
	}
	return step, nil
}

func (fa fileAction) toAction() (Action, error) {
	if fa.Type == "" {
		return Action{}, errors.New("type is required")
	}
	if fa.SleepAfterMs < 0 {
		return Action{}, errors.New("sleepAfterMs must not be negative")
	}

	a := Action{
		// unknown tags are kept, dispatch rejects them
		Type:       ActionTag(fa.Type),
		Target:     fa.Target,
		Value:      fa.Value,
		SleepAfter: millis(fa.SleepAfterMs),
		Label:      fa.Label,
	}

	frame, err := parseFrame(&fa.Frame)
	if err != nil {
		return Action{}, err
	}
	a.Frame = frame

	if fa.Expected != nil {
		m, err := fa.Expected.toMatcher()
		if err != nil {
			return Action{}, err
		}
		a.Expected = &m
	}
	return a, nil
}

func (fe fileExpected) toMatcher() (Matcher, error) {
	switch {
	case fe.Equals != nil && fe.Pattern != nil:
		return Matcher{}, errors.New("expected must declare only one of equals or pattern")
	case fe.Equals != nil:
		return Exact(*fe.Equals), nil
	case fe.Pattern != nil:
		return Pattern(*fe.Pattern)
	default:
		return Matcher{}, errors.New("expected must declare equals or pattern")
	}
}

func parseFrame(node *yaml.Node) (*FrameRef, error) {
	if node.Kind == 0 {
		return nil, nil //nolint:nilnil
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: frame must be an index or a name", node.Line)
	}
	if node.ShortTag() == "!!int" {
		i, err := strconv.Atoi(node.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid frame index %q: %w", node.Line, node.Value, err)
		}
		if i < 0 {
			return nil, fmt.Errorf("line %d: frame index %d must not be negative", node.Line, i)
		}
		return FrameIndex(i), nil
	}
	if node.ShortTag() == "!!null" {
		return nil, nil //nolint:nilnil
	}
	if node.Value == "" {
		return nil, fmt.Errorf("line %d: frame name must not be empty", node.Line)
	}
	return FrameName(node.Value), nil
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
