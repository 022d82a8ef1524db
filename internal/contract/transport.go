package contract

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

// Transport validates every request before sending it and every response
// after receiving it. In strict mode a violation fails the call; otherwise
// it is only logged.
type Transport struct {
	Base      http.RoundTripper
	Validator *Validator
	Strict    bool
	Logger    *slog.Logger
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}

	if err := t.Validator.ValidateRequest(out); err != nil {
		if t.Strict {
			return nil, err
		}
		t.Logger.Warn("outgoing request violates api contract", "error", err)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if verr := t.Validator.ValidateResponse(out, resp.StatusCode, resp.Header, body); verr != nil {
		if t.Strict {
			return nil, verr
		}
		t.Logger.Warn("api response violates contract", "error", verr)
	}
	return resp, nil
}

// Middleware rejects requests that violate the contract with 400 before
// they reach next. Fake API servers in tests use it.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.ValidateRequest(r); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"detail":"contract violation"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
