// Package schema turns untrusted inbound payloads into validated ChatRequests.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/af-corp/chat-gateway/internal/types"
)

// Violation describes one field that failed validation.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Failure lists every violated field of a rejected payload.
type Failure struct {
	Violations []Violation `json:"violations"`
}

func (f *Failure) Error() string {
	parts := make([]string, 0, len(f.Violations))
	for _, v := range f.Violations {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a decoded JSON payload and builds a ChatRequest from it.
// Unknown top-level keys are ignored. On failure every violated field is
// reported, not only the first. Validate is pure: validating the JSON form of
// a request it produced yields an equal request.
func Validate(payload any) (*types.ChatRequest, *Failure) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &Failure{Violations: []Violation{{
			Field: "", Rule: "type", Message: "request body must be a JSON object",
		}}}
	}

	d := &decoder{seen: make(map[string]bool)}
	req := d.request(obj)

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			d.add("", "invalid", err.Error())
		}
		for _, fe := range fieldErrs {
			field := fieldPath(fe.Namespace())
			if d.seen[field] {
				continue
			}
			d.add(field, fe.Tag(), ruleMessage(fe))
		}
	}

	if len(d.violations) > 0 {
		return nil, &Failure{Violations: d.violations}
	}
	return req, nil
}

// decoder coerces loosely typed JSON values into the request struct,
// recording a type violation for each field it cannot coerce.
type decoder struct {
	violations []Violation
	seen       map[string]bool
}

func (d *decoder) add(field, rule, msg string) {
	d.seen[field] = true
	d.violations = append(d.violations, Violation{Field: field, Rule: rule, Message: msg})
}

func (d *decoder) request(obj map[string]any) *types.ChatRequest {
	req := &types.ChatRequest{}

	switch m := obj["model"].(type) {
	case nil:
	case string:
		req.Model = types.ModelID(m)
	default:
		d.add("model", "type", "must be a string")
	}

	switch msgs := obj["messages"].(type) {
	case nil:
	case []any:
		req.Messages = make([]types.Message, 0, len(msgs))
		for i, raw := range msgs {
			req.Messages = append(req.Messages, d.message(fmt.Sprintf("messages[%d]", i), raw))
		}
	default:
		d.add("messages", "type", "must be an array of messages")
	}

	switch s := obj["stream"].(type) {
	case nil:
	case bool:
		req.Stream = s
	default:
		d.add("stream", "type", "must be a boolean")
	}

	switch p := obj["parameters"].(type) {
	case nil:
	case map[string]any:
		req.Parameters = p
	default:
		d.add("parameters", "type", "must be an object")
	}

	return req
}

func (d *decoder) message(path string, raw any) types.Message {
	obj, ok := raw.(map[string]any)
	if !ok {
		d.add(path, "type", "must be an object")
		// Mark the children so the struct pass does not report them again.
		d.seen[path+".role"] = true
		return types.Message{}
	}

	var msg types.Message
	switch r := obj["role"].(type) {
	case nil:
	case string:
		msg.Role = types.Role(r)
	default:
		d.add(path+".role", "type", "must be a string")
	}

	if text, ok := coerceText(obj["content"]); ok {
		msg.Content = text
	} else {
		d.add(path+".content", "type", "must be text")
	}

	switch n := obj["name"].(type) {
	case nil:
	case string:
		msg.Name = n
	default:
		d.add(path+".name", "type", "must be a string")
	}

	switch fc := obj["functionCall"].(type) {
	case nil:
	case map[string]any:
		call := &types.FunctionCall{}
		if name, ok := fc["name"].(string); ok {
			call.Name = name
		} else if fc["name"] != nil {
			d.add(path+".functionCall.name", "type", "must be a string")
		}
		if args, ok := coerceText(fc["arguments"]); ok {
			call.Arguments = args
		} else {
			d.add(path+".functionCall.arguments", "type", "must be text")
		}
		msg.FunctionCall = call
	default:
		d.add(path+".functionCall", "type", "must be an object")
	}

	return msg
}

// coerceText accepts JSON scalars as text. Objects and arrays are rejected.
func coerceText(v any) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", true
	case string:
		return c, true
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64), true
	case json.Number:
		return c.String(), true
	case bool:
		return strconv.FormatBool(c), true
	default:
		return "", false
	}
}

// fieldPath strips the root struct name from a validator namespace:
// "ChatRequest.messages[0].role" becomes "messages[0].role".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
