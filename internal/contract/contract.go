// Package contract embeds the OpenAPI description of the expense API and
// validates traffic against it.
package contract

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yml
var document []byte

var ErrMissingBearer = errors.New("missing bearer credential")

// Document returns the raw OpenAPI YAML.
func Document() []byte {
	return bytes.Clone(document)
}

type Validator struct {
	doc    *openapi3.T
	router routers.Router
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Validator, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse api contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid api contract: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract router: %w", err)
	}

	return &Validator{doc: doc, router: router}, nil
}

func (v *Validator) Spec() *openapi3.T {
	return v.doc
}

// Operations lists "METHOD path" for every operation in the contract.
func (v *Validator) Operations() []string {
	var out []string
	for _, path := range v.doc.Paths.InMatchingOrder() {
		item := v.doc.Paths.Value(path)
		for method := range item.Operations() {
			out = append(out, method+" "+path)
		}
	}
	return out
}

func authenticate(_ context.Context, in *openapi3filter.AuthenticationInput) error {
	header := in.RequestValidationInput.Request.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") || len(header) == len("Bearer ") {
		return ErrMissingBearer
	}
	return nil
}

func (v *Validator) requestInput(req *http.Request) (*openapi3filter.RequestValidationInput, error) {
	route, params, err := v.router.FindRoute(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s is not part of the contract: %w", req.Method, req.URL.Path, err)
	}
	return &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: authenticate,
			MultiError:         true,
		},
	}, nil
}

// ValidateRequest checks req against the contract. The body is restored so
// the request can still be sent or served.
func (v *Validator) ValidateRequest(req *http.Request) error {
	body, err := readAndRestore(&req.Body)
	if err != nil {
		return err
	}
	if body != nil {
		defer func() { req.Body = io.NopCloser(bytes.NewReader(body)) }()
	}

	input, err := v.requestInput(req)
	if err != nil {
		return err
	}
	if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
		return fmt.Errorf("request %s %s violates the contract: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// ValidateResponse checks a response produced for req.
func (v *Validator) ValidateResponse(req *http.Request, status int, header http.Header, body []byte) error {
	input, err := v.requestInput(req)
	if err != nil {
		return err
	}
	// credentials were checked with the request
	input.Options.AuthenticationFunc = openapi3filter.NoopAuthenticationFunc

	out := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 status,
		Header:                 header,
		Options:                &openapi3filter.Options{IncludeResponseStatus: true, MultiError: true},
	}
	out.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(req.Context(), out); err != nil {
		return fmt.Errorf("response %d to %s %s violates the contract: %w", status, req.Method, req.URL.Path, err)
	}
	return nil
}

func readAndRestore(body *io.ReadCloser) ([]byte, error) {
	if *body == nil || *body == http.NoBody {
		return nil, nil
	}
	raw, err := io.ReadAll(*body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	_ = (*body).Close()
	*body = io.NopCloser(bytes.NewReader(raw))
	return raw, nil
}
