package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/matchbox/internal/errors"
)

func TestIs_MatchesSentinelByKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", svcErr.NotFound("user %s not found", "42"))

	assert.True(t, stderrors.Is(err, svcErr.ErrNotFound))
	assert.False(t, stderrors.Is(err, svcErr.ErrConflict))
	assert.Equal(t, svcErr.KindNotFound, svcErr.KindOf(err))
	assert.Equal(t, "lookup: user 42 not found", err.Error())
}

func TestExternal_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := svcErr.External("payment gateway unavailable", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, svcErr.ErrExternal))
	assert.Equal(t, "payment gateway unavailable", err.Error())
}

func TestMap(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{svcErr.Validation("age must be between 18 and 100"), codes.InvalidArgument},
		{svcErr.NotFound("user not found"), codes.NotFound},
		{svcErr.Conflict("already liked"), codes.AlreadyExists},
		{svcErr.External("gateway", nil), codes.Unavailable},
		{svcErr.Signature("bad"), codes.Unauthenticated},
		{gorm.ErrRecordNotFound, codes.NotFound},
		{gorm.ErrDuplicatedKey, codes.AlreadyExists},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{stderrors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		st, ok := status.FromError(svcErr.Map(tc.err))
		assert.True(t, ok)
		assert.Equal(t, tc.code, st.Code(), tc.err.Error())
	}
	assert.Nil(t, svcErr.Map(nil))
}

func TestMap_KeepsMessage(t *testing.T) {
	st, _ := status.FromError(svcErr.Map(svcErr.Conflict("already liked")))
	assert.Equal(t, "already liked", st.Message())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, svcErr.HTTPStatus(svcErr.External("x", nil)))
	assert.Equal(t, http.StatusBadRequest, svcErr.HTTPStatus(svcErr.Validation("x")))
	assert.Equal(t, http.StatusNotFound, svcErr.HTTPStatus(svcErr.NotFound("x")))
	assert.Equal(t, http.StatusConflict, svcErr.HTTPStatus(svcErr.Conflict("x")))
	assert.Equal(t, http.StatusInternalServerError, svcErr.HTTPStatus(stderrors.New("x")))
}
