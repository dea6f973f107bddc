package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/htmlconf/internal/jsonval"
	"github.com/roach88/htmlconf/internal/wtf8"
)

// DefaultState is the tokenizer state used when a case has no
// initialStates entry.
const DefaultState = "Data state"

// TokenizerCase is one test from a tokenizer fixture, as stored on disk.
// Call Normalized before handing any of its text to the engine.
type TokenizerCase struct {
	Description   string
	Input         string
	Output        jsonval.Value
	InitialStates []string
	LastStartTag  string
	DoubleEscaped bool
}

// TokenizerFixture is the parsed form of one *.test file.
type TokenizerFixture struct {
	Cases []TokenizerCase

	// XMLViolation is set when the cases came from the
	// "xmlViolationTests" key, which selects a different engine mode.
	XMLViolation bool
}

type rawTokenizerCase struct {
	Description   string          `json:"description"`
	Input         string          `json:"input"`
	Output        json.RawMessage `json:"output"`
	InitialStates []string        `json:"initialStates"`
	LastStartTag  string          `json:"lastStartTag"`
	DoubleEscaped bool            `json:"doubleEscaped"`
}

// ReadTokenizerFixture parses one tokenizer *.test file.
func ReadTokenizerFixture(path string) (*TokenizerFixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer fixture: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tokenizer fixture %s: %w", path, err)
	}

	tests, ok := doc["tests"]
	xml := false
	if !ok {
		tests, ok = doc["xmlViolationTests"]
		xml = true
	}
	if !ok {
		return nil, fmt.Errorf("tokenizer fixture %s: missing tests/xmlViolationTests key", path)
	}

	var rawCases []rawTokenizerCase
	if err := json.Unmarshal(tests, &rawCases); err != nil {
		return nil, fmt.Errorf("parse tokenizer fixture %s: %w", path, err)
	}

	fx := &TokenizerFixture{
		Cases:        make([]TokenizerCase, len(rawCases)),
		XMLViolation: xml,
	}
	for i, rc := range rawCases {
		output, err := jsonval.Decode(rc.Output)
		if err != nil {
			return nil, fmt.Errorf("tokenizer fixture %s case %d: %w", path, i, err)
		}
		fx.Cases[i] = TokenizerCase{
			Description:   rc.Description,
			Input:         rc.Input,
			Output:        output,
			InitialStates: rc.InitialStates,
			LastStartTag:  rc.LastStartTag,
			DoubleEscaped: rc.DoubleEscaped,
		}
	}
	return fx, nil
}

// CountTokenizerCases returns the true case population of one fixture.
func CountTokenizerCases(path string) (int, error) {
	fx, err := ReadTokenizerFixture(path)
	if err != nil {
		return 0, err
	}
	return len(fx.Cases), nil
}

// States returns the initial states to run the case under, defaulting to
// the single Data state. A case passes only if it matches under every one.
func (c TokenizerCase) States() []string {
	if len(c.InitialStates) == 0 {
		return []string{DefaultState}
	}
	return c.InitialStates
}

// Normalized returns the case's input, expected output and lastStartTag
// ready for engine comparison: the doubleEscaped layer is decoded when
// present, and every string is pushed through the forgiving UTF-8 round
// trip so expectations agree with what the engine actually receives.
func (c TokenizerCase) Normalized() (input string, output jsonval.Value, last string, err error) {
	input, output, last = c.Input, c.Output, c.LastStartTag
	if c.DoubleEscaped {
		if input, err = jsonval.Unescape(input); err != nil {
			return "", nil, "", fmt.Errorf("doubleEscaped input: %w", err)
		}
		if output, err = jsonval.UnescapeValue(output); err != nil {
			return "", nil, "", fmt.Errorf("doubleEscaped output: %w", err)
		}
		if last != "" {
			if last, err = jsonval.Unescape(last); err != nil {
				return "", nil, "", fmt.Errorf("doubleEscaped lastStartTag: %w", err)
			}
		}
	}

	input = wtf8.RoundTrip(input)
	output = jsonval.MapStrings(output, wtf8.RoundTrip)
	if last != "" {
		last = wtf8.RoundTrip(last)
	}
	return input, output, last, nil
}

// engineStates maps html5lib initialStates spellings to the engine's
// state arguments.
var engineStates = map[string]string{
	"Data state":          "Data",
	"PLAINTEXT state":     "PLAINTEXT",
	"RCDATA state":        "RCDATA",
	"RAWTEXT state":       "RAWTEXT",
	"Script data state":   "ScriptData",
	"CDATA section state": "CDATASection",
}

// EngineState translates an initialStates entry to the engine's state
// argument. The second result is false for states the engine does not
// implement; callers decide whether that is a skip or a failure.
func EngineState(name string) (string, bool) {
	s, ok := engineStates[strings.TrimSpace(name)]
	return s, ok
}
