package response

import (
	"encoding/json"
	"io"
	"net/http"

	"shopgifter/pkg/apierror"
)

// MaxBodySize caps how much of an upstream response body is read.
const MaxBodySize = 8 << 20

// Body reads the whole response body (up to MaxBodySize) and closes it.
func Body(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, apierror.Transport("failed to read response body", err)
	}
	return data, nil
}

// OK reports whether the status code is in the 2xx range.
func OK(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

// JSON decodes a successful JSON response into v.
// Non-2xx responses are returned as platform rejections, and undecodable
// payloads as transport errors.
func JSON(resp *http.Response, v interface{}) error {
	data, err := Body(resp)
	if err != nil {
		return err
	}

	if !OK(resp.StatusCode) {
		return apierror.FromResponse(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return apierror.Transport("invalid JSON from upstream", err)
	}
	return nil
}
