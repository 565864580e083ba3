package validation

import (
	"strings"
	"testing"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidRating(t *testing.T) {
	for _, r := range []float64{0, 0.5, 7.5, 10} {
		assert.True(t, ValidRating(r), "%v", r)
	}
	for _, r := range []float64{-0.5, 7.3, 10.5, 11} {
		assert.False(t, ValidRating(r), "%v", r)
	}
}

func TestReviewPatch(t *testing.T) {
	v := New()
	tests := []struct {
		name  string
		patch model.ReviewPatch
		field string
	}{
		{"valid", model.ReviewPatch{ReviewTitle: ptr("Great"), Rating: ptr(7.5)}, ""},
		{"empty title", model.ReviewPatch{ReviewTitle: ptr("")}, "reviewTitle"},
		{"long title", model.ReviewPatch{ReviewTitle: ptr(strings.Repeat("a", 51))}, "reviewTitle"},
		{"off-step rating", model.ReviewPatch{Rating: ptr(7.3)}, "rating"},
		{"long text", model.ReviewPatch{ReviewText: ptr(strings.Repeat("a", 2001))}, "reviewText"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.patch)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestProfilePatch(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(model.ProfilePatch{DisplayName: ptr("영화광_99")}))
	assert.NoError(t, v.Struct(model.ProfilePatch{DisplayName: ptr("Neo Anderson")}))
	assert.NoError(t, v.Struct(model.ProfilePatch{Biography: ptr("")}))

	var verr *apperr.ValidationError
	require.ErrorAs(t, v.Struct(model.ProfilePatch{DisplayName: ptr("neo!")}), &verr)
	assert.Equal(t, "displayName", verr.Field)
	require.ErrorAs(t, v.Struct(model.ProfilePatch{DisplayName: ptr(strings.Repeat("가", 21))}), &verr)
	assert.Equal(t, "displayName", verr.Field)
	require.ErrorAs(t, v.Struct(model.ProfilePatch{Biography: ptr(strings.Repeat("b", 101))}), &verr)
	assert.Equal(t, "biography", verr.Field)
}
