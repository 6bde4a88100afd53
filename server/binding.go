package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/go-viper/mapstructure/v2"

	"github.com/jrsteele09/storefront-api/internal/errors"
)

const (
	maxBodyBytes        = 1 << 20
	maxProductBodyBytes = 10 << 20
)

// bindRequest decodes a JSON, urlencoded or multipart body of at most limit
// bytes into target using its json tags. Form values are strings, so decoding
// is weakly typed: "19.99" fills a float, "true" or "1" fills a bool and ""
// leaves the zero value. Malformed or oversized bodies are errors.ErrValidation.
func bindRequest(w http.ResponseWriter, r *http.Request, limit int64, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	values, err := requestValues(r, limit)
	if err != nil {
		return errors.Kind(errors.ErrValidation, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return errors.Wrapf(err, "[bindRequest] decoder")
	}
	if err := decoder.Decode(values); err != nil {
		return errors.Kind(errors.ErrValidation, err)
	}
	return nil
}

func requestValues(r *http.Request, limit int64) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(limit); err != nil {
			return nil, errors.Wrapf(err, "multipart body")
		}
		// File parts are never read; drop any that spilled to disk.
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		return firstValues(r.MultipartForm.Value), nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, errors.Wrapf(err, "form body")
		}
		return firstValues(r.PostForm), nil
	default:
		values := map[string]any{}
		err := json.NewDecoder(r.Body).Decode(&values)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "json body")
		}
		return values, nil
	}
}

func firstValues(form map[string][]string) map[string]any {
	values := make(map[string]any, len(form))
	for key, v := range form {
		if len(v) > 0 {
			values[key] = v[0]
		}
	}
	return values
}
