package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"sort"
	"strings"
)

// Parameter is a query string. Keys are sorted and spaces are encoded as %20.
type Parameter map[string]string

func (p Parameter) Encode() string {
	var parameters []string
	for key, value := range p {
		parameters = append(parameters, key+"="+percentEncode(value))
	}
	sort.Strings(parameters)
	return strings.Join(parameters, "&")
}

func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// JSONBody marshals any value as the request body.
type JSONBody struct {
	Value any
}

func (j JSONBody) ToReader() (io.Reader, string, error) {
	b, err := json.Marshal(j.Value)
	if err != nil {
		return nil, "", err
	}

	return bytes.NewBuffer(b), "application/json", nil
}
