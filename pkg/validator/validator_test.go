package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type scorePayload struct {
	StudentID string  `json:"student_id" validate:"required"`
	Test      float64 `json:"test" validate:"gte=0,lte=100"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(&scorePayload{StudentID: "s-1", Test: 42}))

	err := ValidateStruct(&scorePayload{Test: 140})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)
	require.Equal(t, "student_id", failures[0].Field)
	require.Equal(t, "required", failures[0].Tag)
	require.Equal(t, "test", failures[1].Field)
	require.Equal(t, "lte", failures[1].Tag)
	require.Equal(t, "100", failures[1].Param)
}
