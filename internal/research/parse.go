package research

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// PlaceholderAnswer stands in for a missing or empty answer field.
const PlaceholderAnswer = "No answer returned."

// ParseResult reads a /api/run body. Only a body that is not a JSON object
// is an error; every field falls back to a default when missing or mistyped.
func ParseResult(body []byte) (Result, error) {
	if !gjson.ValidBytes(body) {
		return Result{}, &MalformedResponseError{Err: errors.New("body is not valid JSON")}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Result{}, &MalformedResponseError{Err: errors.New("body is not a JSON object")}
	}

	res := Result{Answer: PlaceholderAnswer}

	if answer := doc.Get("answer"); answer.Type == gjson.String && strings.TrimSpace(answer.Str) != "" {
		res.Answer = answer.Str
	}

	if list := doc.Get("sources"); list.IsArray() {
		for _, item := range list.Array() {
			// Every entry is kept so numbering matches the service's list.
			var ref string
			switch item.Type {
			case gjson.String:
				ref = item.Str
			case gjson.Null:
			default:
				ref = item.Raw
			}
			res.Sources = append(res.Sources, ref)
		}
	}

	switch notice := doc.Get("error"); {
	case notice.Type == gjson.String:
		res.Notice = strings.TrimSpace(notice.Str)
	case notice.IsObject():
		res.Notice = notice.Raw
	}

	return res, nil
}
