package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase is one request against a handler tree
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           any
	Headers        map[string]string
	ExpectedStatus int
	ExpectedBody   map[string]any
	Setup          func(t *testing.T)
	Validate       func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunHTTPTestCases runs each case as a subtest against h
func RunHTTPTestCases(t *testing.T, h http.Handler, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, h, tc)
		})
	}
}

// RunHTTPTestCase sends a single request through h, so route params and
// middleware behave as in production.
func RunHTTPTestCase(t *testing.T, h http.Handler, tc HTTPTestCase) *httptest.ResponseRecorder {
	t.Helper()

	if tc.Setup != nil {
		tc.Setup(t)
	}

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	path := tc.Path
	if path == "" {
		path = "/"
	}
	w := Do(t, h, method, path, tc.Body, tc.Headers)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, w.Code, "unexpected status code, body: %s", w.Body.String())
	}
	if tc.ExpectedBody != nil {
		actual := DecodeJSON(t, w)
		for key, expected := range tc.ExpectedBody {
			assert.Equal(t, expected, actual[key], "unexpected value for key: %s", key)
		}
	}
	if tc.Validate != nil {
		tc.Validate(t, w)
	}
	return w
}

// Do serves one request. A non-nil body is sent as JSON.
func Do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = ToJSONReader(t, body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// DecodeJSON parses the recorded body as a JSON object
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	return DecodeJSONAs[map[string]any](t, w)
}

// DecodeJSONAs parses the recorded body into T
func DecodeJSONAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "failed to parse JSON response: %s", w.Body.String())
	return result
}

// ResponseData returns the "data" member of a success envelope
func ResponseData(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()

	resp := DecodeJSON(t, w)
	require.Equal(t, true, resp["success"], "expected success envelope: %s", w.Body.String())
	return resp["data"]
}

// AssertSuccessResponse asserts a success envelope with no error
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	resp := DecodeJSON(t, w)
	assert.Equal(t, true, resp["success"], "expected success to be true")
	assert.Nil(t, resp["error"], "expected no error")
}

// AssertErrorResponse asserts a failure envelope carrying expectedCode
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) map[string]any {
	t.Helper()

	resp := DecodeJSON(t, w)
	assert.Equal(t, false, resp["success"], "expected success to be false")

	errMap, ok := resp["error"].(map[string]any)
	require.True(t, ok, "expected error object in response")
	assert.Equal(t, expectedCode, errMap["code"], "unexpected error code")
	return errMap
}

// ToJSONReader marshals v into a reader
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "failed to marshal to JSON")
	return bytes.NewReader(data)
}
