package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOwner(t *testing.T) {
	r := &Review{ID: "r1", OwnerUserID: "U101"}
	tests := []struct {
		name   string
		userID string
		review *Review
		want   bool
	}{
		{"owner", "U101", r, true},
		{"other user", "U202", r, false},
		{"signed out", "", r, false},
		{"no review", "U101", nil, false},
		{"empty owner", "", &Review{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOwner(tt.userID, tt.review))
		})
	}
}

func TestReviewPatch(t *testing.T) {
	assert.True(t, ReviewPatch{}.IsEmpty())

	title, rating := "Still great", 9.5
	p := ReviewPatch{ReviewTitle: &title, Rating: &rating}
	assert.False(t, p.IsEmpty())

	r := &Review{ReviewTitle: "Great", Rating: 7.5, ReviewText: "Enjoyed it"}
	p.Apply(r)
	assert.Equal(t, &Review{ReviewTitle: "Still great", Rating: 9.5, ReviewText: "Enjoyed it"}, r)
}
