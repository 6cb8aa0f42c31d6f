package gateway

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Do performs the request and decodes the body into T. A body that is valid JSON but does not
// fit T is reported as a ResponseParseError.
func Do[T any](ctx context.Context, r Requester, path string, opts RequestOptions) (T, error) {
	var out T
	raw, err := r.Request(ctx, path, opts)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ResponseParseError{Err: err}
	}
	return out, nil
}

// JSONBody marshals v for RequestOptions.Body.
func JSONBody(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "[gateway JSONBody]")
	}
	return string(data), nil
}
