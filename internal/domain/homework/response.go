package homework

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const homeworksKey = "homeworks"

var (
	ErrUnexpectedResponseType = errors.New("API response is neither an object nor a list")
	ErrMissingHomeworks       = errors.New("API response has no \"homeworks\" key")
	ErrHomeworksNotList       = errors.New("\"homeworks\" is not a list")
	ErrMalformedHomework      = errors.New("malformed homework record")
	ErrNoHomeworks            = errors.New("API response contains no homeworks")
	ErrNoEmbeddedHomeworks    = errors.New("API response list has no object with \"homeworks\"")
)

// ExtractHomeworks validates a decoded API body and returns its homework records.
//
// The expected shape is an object with a non-empty "homeworks" list. A top-level list is
// tolerated when one of its elements is such an object; the first match is used.
// An empty list is reported as ErrNoHomeworks rather than an empty result.
func ExtractHomeworks(body json.RawMessage) ([]Homework, error) {
	switch firstByte(body) {
	case '{':
		return extractFromObject(body)
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(body, &elems); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponseType, err)
		}
		for _, elem := range elems {
			if firstByte(elem) != '{' {
				continue
			}
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(elem, &fields); err != nil {
				continue
			}
			if _, ok := fields[homeworksKey]; ok {
				return extractFromFields(fields)
			}
		}
		return nil, ErrNoEmbeddedHomeworks
	default:
		return nil, ErrUnexpectedResponseType
	}
}

func extractFromObject(body json.RawMessage) ([]Homework, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponseType, err)
	}
	return extractFromFields(fields)
}

func extractFromFields(fields map[string]json.RawMessage) ([]Homework, error) {
	raw, ok := fields[homeworksKey]
	if !ok {
		return nil, ErrMissingHomeworks
	}
	if firstByte(raw) != '[' {
		return nil, ErrHomeworksNotList
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHomeworksNotList, err)
	}
	if len(records) == 0 {
		return nil, ErrNoHomeworks
	}

	homeworks := make([]Homework, 0, len(records))
	for i, record := range records {
		if firstByte(record) != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedHomework, i)
		}
		var h Homework
		if err := json.Unmarshal(record, &h); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedHomework, i, err)
		}
		homeworks = append(homeworks, h)
	}
	return homeworks, nil
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
