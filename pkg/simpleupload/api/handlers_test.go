package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/objectkey"
	"github.com/tendant/simple-upload/pkg/simpleupload/sigv4"
	memorystorage "github.com/tendant/simple-upload/pkg/simpleupload/storage/memory"
)

type failingFactory struct {
	err error
}

func (f failingFactory) NewPresignClient(ctx context.Context, cfg simpleupload.ClientConfig) (simpleupload.PresignClient, error) {
	return nil, f.err
}

func setupTestService(t *testing.T, options ...simpleupload.Option) simpleupload.Service {
	t.Helper()

	base := []simpleupload.Option{
		simpleupload.WithDestinations(map[string]simpleupload.Destination{
			"files": {
				Bucket:      "bkt",
				Region:      "us-east-1",
				KeyStrategy: objectkey.Prefix("uploads"),
			},
			"locked": {
				Bucket: "bkt",
				Allow: func(r *http.Request) bool {
					return r.Header.Get("X-Api-Key") == "sesame"
				},
			},
		}),
		simpleupload.WithClientFactory(memorystorage.New()),
		simpleupload.WithSettings(simpleupload.Settings{
			AccessKey: "AKIAEXAMPLE",
			SecretKey: "uploadsecret",
			Region:    "us-west-2",
		}),
	}

	svc, err := simpleupload.New(append(base, options...)...)
	require.NoError(t, err)
	return svc
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func postJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetUploadParams_Success(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	w := postJSON(t, router, "/upload-params", UploadParamsRequest{
		Destination: "files",
		FileName:    "a.png",
		ContentType: "image/png",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var params simpleupload.UploadParams
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &params))

	assert.Equal(t, "files", params.DestinationID)
	assert.Equal(t, "uploads/a.png", params.ObjectKey)
	assert.Equal(t, "bkt", params.Bucket)
	assert.Equal(t, "PUT", params.Method)
	assert.Equal(t, "image/png", params.ContentType)
	assert.Equal(t, "AKIAEXAMPLE", params.AccessKey)
	assert.Contains(t, params.URL, "bkt")
	assert.Contains(t, params.URL, "X-Amz-Signature=")
}

func TestGetUploadParams_Validation(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	tests := []struct {
		name string
		body UploadParamsRequest
	}{
		{"missing destination", UploadParamsRequest{FileName: "a.png"}},
		{"missing file name", UploadParamsRequest{Destination: "files"}},
		{"unknown mode", UploadParamsRequest{Destination: "files", FileName: "a.png", Mode: "sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/upload-params", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetUploadParams_MalformedBody(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	req := httptest.NewRequest("POST", "/upload-params", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUploadParams_UnknownDestination(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	w := postJSON(t, router, "/upload-params", UploadParamsRequest{
		Destination: "nope",
		FileName:    "a.png",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUploadParams_LookupFailureLogging(t *testing.T) {
	t.Run("UnknownDestination", func(t *testing.T) {
		logs := captureLogs(t)
		router := NewUploadHandler(setupTestService(t)).Routes()

		w := postJSON(t, router, "/upload-params", UploadParamsRequest{
			Destination: "nope",
			FileName:    "a.png",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, logs.String(), "Upload destination lookup failed")
	})

	t.Run("SourceError", func(t *testing.T) {
		logs := captureLogs(t)
		svc, err := simpleupload.New(
			simpleupload.WithDestinationSource(simpleupload.DestinationSourceFunc(
				func(ctx context.Context) (map[string]simpleupload.Destination, error) {
					return nil, errors.New("config store unreachable")
				},
			)),
			simpleupload.WithClientFactory(memorystorage.New()),
		)
		require.NoError(t, err)
		router := NewUploadHandler(svc).Routes()

		w := postJSON(t, router, "/upload-params", UploadParamsRequest{
			Destination: "files",
			FileName:    "a.png",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, logs.String(), "Upload destination lookup failed")
		assert.Contains(t, logs.String(), "config store unreachable")
	})
}

func TestGetUploadParams_AllowGate(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	body, err := json.Marshal(UploadParamsRequest{Destination: "locked", FileName: "a.png"})
	require.NoError(t, err)

	t.Run("DeniedWithoutKey", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/upload-params", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AllowedWithKey", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/upload-params", bytes.NewReader(body))
		req.Header.Set("X-Api-Key", "sesame")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetUploadParams_ProviderFault(t *testing.T) {
	svc := setupTestService(t, simpleupload.WithClientFactory(failingFactory{
		err: assert.AnError,
	}))
	router := NewUploadHandler(svc).Routes()

	w := postJSON(t, router, "/upload-params", UploadParamsRequest{
		Destination: "files",
		FileName:    "a.png",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetUploadParams_ProviderFaultCode(t *testing.T) {
	logs := captureLogs(t)

	svc := setupTestService(t, simpleupload.WithClientFactory(failingFactory{
		err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "presign rejected"},
	}))
	router := NewUploadHandler(svc).Routes()

	w := postJSON(t, router, "/upload-params", UploadParamsRequest{
		Destination: "files",
		FileName:    "a.png",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, logs.String(), "code=AccessDenied")
}

func TestSignV4_Success(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	w := postJSON(t, router, "/signature", SignatureRequest{
		ToSign:   "policy-document",
		Datetime: "20240601T000000Z",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SignatureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	key := sigv4.SigningKey("uploadsecret", date, "us-west-2", sigv4.ServiceS3)
	assert.Equal(t, sigv4.Signature(key, "policy-document"), resp.Signature)
}

func TestSignV4_DestinationRegion(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	w := postJSON(t, router, "/signature", SignatureRequest{
		Destination: "files",
		ToSign:      "policy-document",
		Datetime:    "20240601",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SignatureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	key := sigv4.SigningKey("uploadsecret", date, "us-east-1", sigv4.ServiceS3)
	assert.Equal(t, sigv4.Signature(key, "policy-document"), resp.Signature)
}

func TestSignV4_ForeignMode(t *testing.T) {
	svc := setupTestService(t, simpleupload.WithSettings(simpleupload.Settings{
		AccessKey:         "AKIAPRIMARY",
		SecretKey:         "primarysecret",
		Region:            "us-west-2",
		OriginalAccessKey: "AKIAORIGINAL",
		OriginalSecretKey: "originalsecret",
		OriginalRegion:    "eu-central-1",
	}))
	router := NewUploadHandler(svc).Routes()

	w := postJSON(t, router, "/signature", SignatureRequest{
		ToSign:   "policy-document",
		Datetime: "20240601T000000Z",
		Mode:     "foreign",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SignatureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	key := sigv4.SigningKey("originalsecret", date, "eu-central-1", sigv4.ServiceS3)
	assert.Equal(t, sigv4.Signature(key, "policy-document"), resp.Signature)
}

func TestSignV4_Validation(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	tests := []struct {
		name string
		body SignatureRequest
	}{
		{"missing to_sign", SignatureRequest{Datetime: "20240601T000000Z"}},
		{"bad datetime", SignatureRequest{ToSign: "policy", Datetime: "yesterday"}},
		{"unknown mode", SignatureRequest{ToSign: "policy", Mode: "sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/signature", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSignV4_NoCredentials(t *testing.T) {
	svc := setupTestService(t, simpleupload.WithSettings(simpleupload.Settings{}))
	router := NewUploadHandler(svc).Routes()

	w := postJSON(t, router, "/signature", SignatureRequest{ToSign: "policy-document"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListDestinations(t *testing.T) {
	handler := NewUploadHandler(setupTestService(t))
	router := handler.Routes()

	req := httptest.NewRequest("GET", "/destinations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var ids []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.Equal(t, []string{"files", "locked"}, ids)
}

func TestBearerTokenGate(t *testing.T) {
	tokenAuth := jwtauth.New("HS256", []byte("token-secret"), nil)
	handler := NewUploadHandlerWithAuth(setupTestService(t), tokenAuth)
	router := handler.Routes()

	t.Run("RejectsMissingToken", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/destinations", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AcceptsVerifiedToken", func(t *testing.T) {
		_, tokenString, err := tokenAuth.Encode(map[string]interface{}{"sub": "uploader"})
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/destinations", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
