package magpie

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/dmitrymomot/magpie/pkg/apierror"
	"github.com/dmitrymomot/magpie/pkg/transport"
)

// Metadata is free-form key/value data attached to most objects.
type Metadata map[string]any

// rawJSON keeps the undecoded response body next to the typed fields.
type rawJSON struct {
	raw json.RawMessage
}

// Raw returns the response body exactly as received.
func (r rawJSON) Raw() json.RawMessage {
	return r.raw
}

func (r *rawJSON) setRaw(b json.RawMessage) {
	r.raw = b
}

type rawSetter interface {
	setRaw(json.RawMessage)
}

// service is the shared plumbing of every resource.
type service struct {
	transport *transport.Client
	base      string // path of the collection, e.g. "charges"
	origin    string // alternate origin, empty for the versioned API
	validate  bool
}

func newService(t *transport.Client, base, origin string, validate bool) service {
	return service{transport: t, base: base, origin: origin, validate: validate}
}

// path joins the collection path with escaped segments.
func (s service) path(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, s.base)
	for _, seg := range segments {
		parts = append(parts, url.PathEscape(seg))
	}
	return strings.Join(parts, "/")
}

func (s service) requestOptions(opts []RequestOption) []RequestOption {
	if s.origin == "" {
		return opts
	}
	return append([]RequestOption{transport.WithRequestBaseURL(s.origin)}, opts...)
}

func (s service) do(ctx context.Context, method, path string, data any, opts []RequestOption) (*transport.Response, error) {
	if err := s.check(data); err != nil {
		return nil, err
	}
	return s.transport.DoResponse(ctx, method, path, data, s.requestOptions(opts)...)
}

// check validates data when validation is enabled.
func (s service) check(data any) error {
	if !s.validate || data == nil {
		return nil
	}
	return validateParams(data)
}

// call sends the request and decodes the response into T.
func call[T any](ctx context.Context, s service, method, path string, data any, opts []RequestOption) (*T, error) {
	res, err := s.do(ctx, method, path, data, opts)
	if err != nil {
		return nil, err
	}
	return decode[T](res, res.Body)
}

// decode unmarshals raw, a part of res, into T.
func decode[T any](res *transport.Response, raw json.RawMessage) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, apierror.InvalidJSON(res.Status, res.Header, err)
	}
	if s, ok := any(v).(rawSetter); ok {
		s.setRaw(raw)
	}
	return v, nil
}

func requireID(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrMissingID
		}
	}
	return nil
}

// body keeps a nil params pointer from being sent as a JSON null.
func body[T any](params *T) any {
	if params == nil {
		return nil
	}
	return params
}
