package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStyle() *Style {
	return &Style{ID: 2, Name: "gothic_text", DisplayName: "Gothic Text", IsActive: true}
}

func TestNewDesign(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("valid design starts processing", func(t *testing.T) {
		t.Parallel()
		design, err := NewDesign(userID, testStyle(), "  a dragon breathing fire ")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, design.ID)
		assert.Equal(t, userID, design.UserID)
		assert.Equal(t, "a dragon breathing fire", design.Prompt)
		assert.Equal(t, int64(2), design.StyleID)
		assert.Equal(t, "gothic_text", design.StyleName)
		assert.Equal(t, DesignStatusProcessing, design.Status)
		assert.Empty(t, design.ImageReference)
		assert.Nil(t, design.ProcessingDuration)
		assert.False(t, design.IsPublic)
	})

	tests := []struct {
		name    string
		userID  uuid.UUID
		style   *Style
		prompt  string
		wantErr error
	}{
		{"missing user", uuid.Nil, testStyle(), "rose", ErrEmptyDesignUserID},
		{"missing style", userID, nil, "rose", ErrEmptyDesignStyle},
		{"empty prompt", userID, testStyle(), "   ", ErrEmptyPrompt},
		{"prompt too long", userID, testStyle(), strings.Repeat("x", MaxPromptLength+1), ErrPromptTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewDesign(tt.userID, tt.style, tt.prompt)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("prompt at limit counts runes", func(t *testing.T) {
		t.Parallel()
		_, err := NewDesign(userID, testStyle(), strings.Repeat("é", MaxPromptLength))
		assert.NoError(t, err)
	})
}

func TestDesign_Transitions(t *testing.T) {
	t.Parallel()

	newDesign := func(t *testing.T) *Design {
		d, err := NewDesign(uuid.New(), testStyle(), "koi fish")
		require.NoError(t, err)
		return d
	}

	t.Run("complete sets reference, model and duration", func(t *testing.T) {
		t.Parallel()
		d := newDesign(t)

		err := d.Complete("https://media.example.com/x.png", "FLUX.1-schnell", 1500*time.Millisecond)
		require.NoError(t, err)

		assert.Equal(t, DesignStatusCompleted, d.Status)
		assert.Equal(t, "https://media.example.com/x.png", d.ImageReference)
		assert.Equal(t, "FLUX.1-schnell", d.ModelIdentifier)
		require.NotNil(t, d.ProcessingDuration)
		assert.InDelta(t, 1.5, *d.ProcessingDuration, 0.0001)
		assert.True(t, d.IsTerminal())
		assert.NoError(t, d.Validate())
	})

	t.Run("fail records duration without reference", func(t *testing.T) {
		t.Parallel()
		d := newDesign(t)

		err := d.Fail("FLUX.1-schnell", 250*time.Millisecond)
		require.NoError(t, err)

		assert.Equal(t, DesignStatusFailed, d.Status)
		assert.Empty(t, d.ImageReference)
		require.NotNil(t, d.ProcessingDuration)
		assert.Greater(t, *d.ProcessingDuration, 0.0)
		assert.NoError(t, d.Validate())
	})

	t.Run("complete requires a reference", func(t *testing.T) {
		t.Parallel()
		d := newDesign(t)

		err := d.Complete("", "FLUX.1-schnell", time.Second)
		assert.ErrorIs(t, err, ErrImageReference)
		assert.Equal(t, DesignStatusProcessing, d.Status)
	})

	t.Run("terminal states never transition again", func(t *testing.T) {
		t.Parallel()

		completed := newDesign(t)
		require.NoError(t, completed.Complete("ref", "m", time.Second))
		assert.ErrorIs(t, completed.Fail("m", time.Second), ErrInvalidStatusTransition)
		assert.ErrorIs(t, completed.Complete("other", "m", time.Second), ErrInvalidStatusTransition)
		assert.Equal(t, DesignStatusCompleted, completed.Status)
		assert.Equal(t, "ref", completed.ImageReference)

		failed := newDesign(t)
		require.NoError(t, failed.Fail("m", time.Second))
		assert.ErrorIs(t, failed.Complete("ref", "m", time.Second), ErrInvalidStatusTransition)
		assert.Equal(t, DesignStatusFailed, failed.Status)
		assert.Empty(t, failed.ImageReference)
	})
}

func TestDesign_ValidateReferenceInvariant(t *testing.T) {
	t.Parallel()

	d, err := NewDesign(uuid.New(), testStyle(), "lotus")
	require.NoError(t, err)

	d.ImageReference = "stray.png"
	assert.ErrorIs(t, d.Validate(), ErrImageReference)

	d.ImageReference = ""
	d.Status = DesignStatusCompleted
	assert.ErrorIs(t, d.Validate(), ErrImageReference)

	d.Status = "queued"
	assert.ErrorIs(t, d.Validate(), ErrInvalidDesignState)
}
