package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCalculateReadTime(t *testing.T) {
	cases := []struct {
		name     string
		words    int
		expected int
	}{
		{"empty", 0, 0},
		{"single word", 1, 1},
		{"exactly one minute", 200, 1},
		{"just over one minute", 201, 2},
		{"two and a bit minutes", 450, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content := strings.TrimSpace(strings.Repeat("word ", tc.words))
			assert.Equal(t, tc.expected, CalculateReadTime(content))
		})
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusDraft))
	assert.True(t, ValidStatus(StatusScheduled))
	assert.True(t, ValidStatus(StatusPublished))
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("Technology"))
	assert.True(t, ValidCategory(DefaultCategory))
	assert.False(t, ValidCategory("technology"), "categories are case sensitive")
	assert.False(t, ValidCategory("Gardening"))
}

func TestLikeHelpers(t *testing.T) {
	userID := uuid.New()
	post := &Post{Likes: []Like{{UserID: userID}}}

	assert.True(t, post.LikedBy(userID))
	assert.False(t, post.LikedBy(uuid.New()))
	assert.Equal(t, 1, post.LikeCount())
}

func TestCloneIsDeep(t *testing.T) {
	userID := uuid.New()
	post := &Post{
		ID:    uuid.New(),
		Tags:  []string{"go", "actors"},
		Likes: []Like{{UserID: userID}},
	}

	clone := post.Clone()
	clone.Tags[0] = "rust"
	clone.Likes[0].UserID = uuid.New()

	assert.Equal(t, "go", post.Tags[0])
	assert.Equal(t, userID, post.Likes[0].UserID)
}
