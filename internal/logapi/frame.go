package logapi

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

// ErrMalformedFrame reports a tail payload that is not a JSON string or an
// array of JSON strings.
var ErrMalformedFrame = errors.New("malformed frame")

// DecodeFrame decodes one tail payload into log lines. A payload is either a
// single JSON string or a batch encoded as a JSON array of strings. The parser
// is reused between calls and must not be shared across goroutines.
func DecodeFrame(p *fastjson.Parser, payload []byte) ([]string, error) {
	if p == nil {
		p = &fastjson.Parser{}
	}
	v, err := p.ParseBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch v.Type() {
	case fastjson.TypeString:
		return []string{string(v.GetStringBytes())}, nil
	case fastjson.TypeArray:
		items, _ := v.Array()
		lines := make([]string, 0, len(items))
		for i, item := range items {
			b, err := item.StringBytes()
			if err != nil {
				return nil, fmt.Errorf("%w: element %d is %s", ErrMalformedFrame, i, item.Type())
			}
			lines = append(lines, string(b))
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s", ErrMalformedFrame, v.Type())
	}
}
