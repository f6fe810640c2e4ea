package awards

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRecordError(t *testing.T) {
	err := recordError(status.Error(codes.AlreadyExists, "badge_awards/first_words exists"))
	assert.ErrorIs(t, err, ErrWriteConflict)
	assert.NotErrorIs(t, err, ErrInvalidAward)

	cause := status.Error(codes.Aborted, "contention")
	err = recordError(cause)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, ErrWriteConflict))
}
