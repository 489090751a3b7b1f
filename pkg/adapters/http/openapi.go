package http

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

// rawSpec returns the embedded OpenAPI document bytes.
func rawSpec() []byte {
	return openapiSpec
}

// GetSwagger returns the parsed OpenAPI specification. The servers list is
// stripped so route matching is host-agnostic.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi spec: %w", err)
	}
	doc.Servers = nil
	return doc, nil
}
