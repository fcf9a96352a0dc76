package provisioning

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAdminErrorClassification(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		notFound      bool
		alreadyExists bool
	}{
		{name: "grpc not found", err: status.Error(codes.NotFound, "gone"), notFound: true},
		{name: "grpc already exists", err: status.Error(codes.AlreadyExists, "dup"), alreadyExists: true},
		{name: "wrapped grpc not found", err: fmt.Errorf("lookup: %w", status.Error(codes.NotFound, "gone")), notFound: true},
		{name: "rest not found", err: &googleapi.Error{Code: http.StatusNotFound}, notFound: true},
		{name: "rest conflict", err: fmt.Errorf("create: %w", &googleapi.Error{Code: http.StatusConflict}), alreadyExists: true},
		{name: "permission denied", err: status.Error(codes.PermissionDenied, "no")},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.notFound, isNotFound(tc.err))
			assert.Equal(t, tc.alreadyExists, isAlreadyExists(tc.err))
		})
	}
}
