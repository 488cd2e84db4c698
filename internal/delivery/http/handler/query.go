package handler

import (
	"net/url"
	"strconv"
)

// queryParser reads typed query parameters and collects malformed ones
type queryParser struct {
	values url.Values
	errors map[string]string
}

func newQueryParser(values url.Values) *queryParser {
	return &queryParser{values: values, errors: map[string]string{}}
}

// Float returns nil when the parameter is absent
func (p *queryParser) Float(key string) *float64 {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errors[key] = key + " must be a number"
		return nil
	}
	return &v
}

// Int returns nil when the parameter is absent
func (p *queryParser) Int(key string) *int {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errors[key] = key + " must be an integer"
		return nil
	}
	return &v
}

// IntOr returns fallback when the parameter is absent or malformed
func (p *queryParser) IntOr(key string, fallback int) int {
	if v := p.Int(key); v != nil {
		return *v
	}
	return fallback
}

func (p *queryParser) String(key string) string {
	return p.values.Get(key)
}

func (p *queryParser) Valid() bool {
	return len(p.errors) == 0
}
