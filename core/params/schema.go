package params

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchema is a JSON Schema document
type JSONSchema map[string]interface{}

// Schema builds the JSON Schema a single element of v must satisfy, from
// its type and its min, max, enum and length options
func Schema(v *Variable) JSONSchema {
	s := JSONSchema{}
	switch TypeClass(v.Type) {
	case KindInt:
		s["type"] = "integer"
	case KindFloat:
		s["type"] = "number"
	case KindBool:
		s["type"] = "boolean"
	case KindString:
		s["type"] = "string"
	default:
		return s
	}

	if v.Options.Min.Numeric() {
		s["minimum"] = v.Options.Min.jsonValue()
	}
	if v.Options.Max.Numeric() {
		s["maximum"] = v.Options.Max.jsonValue()
	}
	if choices := v.Choices(); len(choices) > 0 && TypeClass(v.Type) == KindString {
		enum := make([]interface{}, len(choices))
		for i, c := range choices {
			enum[i] = c
		}
		s["enum"] = enum
	}
	if v.Options.Length > 0 && TypeClass(v.Type) == KindString {
		s["maxLength"] = v.Options.Length
	}
	return s
}

// Validator checks declared defaults against their declaration's
// constraints. Compiled schemas are cached by content hash.
type Validator struct {
	mu      sync.RWMutex
	cache   map[string]*jsonschema.Schema
	maxSize int
}

// NewValidator creates a validator caching up to maxSize schemas
func NewValidator(maxSize int) *Validator {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &Validator{
		cache:   make(map[string]*jsonschema.Schema),
		maxSize: maxSize,
	}
}

// CheckDefaults validates every non-empty initial value of v and returns
// one message per violation
func (val *Validator) CheckDefaults(v *Variable) ([]string, error) {
	doc := Schema(v)
	if len(doc) <= 1 {
		return nil, nil
	}
	schema, err := val.compile(doc)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", v.Name, err)
	}

	var out []string
	for i, init := range v.Init {
		if init.IsNone() || init.IsIndef() {
			continue
		}
		if err := schema.Validate(init.jsonValue()); err != nil {
			elem := v.Name
			if v.IsArray() {
				elem = fmt.Sprintf("%s[%d]", v.Name, i+1)
			}
			out = append(out, fmt.Sprintf("default value %s of '%s' is invalid: %s", init.String(), elem, leafMessage(err)))
		}
	}
	return out, nil
}

func leafMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.Message
}

func (val *Validator) compile(doc JSONSchema) (*jsonschema.Schema, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(b)
	key := hex.EncodeToString(sum[:])

	val.mu.RLock()
	s, ok := val.cache[key]
	val.mu.RUnlock()
	if ok {
		return s, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := "schema://" + key + ".json"
	if err := compiler.AddResource(url, strings.NewReader(string(b))); err != nil {
		return nil, err
	}
	s, err = compiler.Compile(url)
	if err != nil {
		return nil, err
	}

	val.mu.Lock()
	defer val.mu.Unlock()
	if len(val.cache) >= val.maxSize {
		val.cache = make(map[string]*jsonschema.Schema)
	}
	val.cache[key] = s
	return s, nil
}

// cached reports how many compiled schemas are held
func (val *Validator) cached() int {
	val.mu.RLock()
	defer val.mu.RUnlock()
	return len(val.cache)
}
