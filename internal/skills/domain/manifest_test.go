package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/parsivoice/pasban/internal/errors"
)

func validManifest() Manifest {
	return Manifest{
		Name:           "weather",
		Description:    "آب‌وهوا",
		Command:        []string{"espeak", "-v", "fa", "${text}"},
		Triggers:       []string{"هوا", "آب و هوا", "weather"},
		Permission:     "network.weather",
		TimeoutSeconds: 10,
	}
}

func TestManifest_Validate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		assert.NoError(t, validManifest().Validate())
	})

	t.Run("Success_WithDigestPin", func(t *testing.T) {
		manifest := validManifest()
		manifest.BinarySHA256 = strings.Repeat("ab", 32)

		assert.NoError(t, manifest.Validate())
	})

	t.Run("Error_MissingName", func(t *testing.T) {
		manifest := validManifest()
		manifest.Name = ""

		err := manifest.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_UppercaseName", func(t *testing.T) {
		manifest := validManifest()
		manifest.Name = "Weather"

		assert.Error(t, manifest.Validate())
	})

	t.Run("Error_EmptyCommand", func(t *testing.T) {
		manifest := validManifest()
		manifest.Command = nil

		assert.Error(t, manifest.Validate())
	})

	t.Run("Error_BlankCommandElement", func(t *testing.T) {
		manifest := validManifest()
		manifest.Command = []string{"espeak", "  "}

		assert.Error(t, manifest.Validate())
	})

	t.Run("Error_MissingPermission", func(t *testing.T) {
		manifest := validManifest()
		manifest.Permission = ""

		assert.Error(t, manifest.Validate())
	})

	t.Run("Error_MalformedPermission", func(t *testing.T) {
		manifest := validManifest()
		manifest.Permission = "Network..Weather"

		assert.Error(t, manifest.Validate())
	})

	t.Run("Error_NegativeTimeout", func(t *testing.T) {
		manifest := validManifest()
		manifest.TimeoutSeconds = -5

		assert.Error(t, manifest.Validate())
	})

	t.Run("Error_MalformedDigestPin", func(t *testing.T) {
		manifest := validManifest()
		manifest.BinarySHA256 = "not-a-digest"

		assert.Error(t, manifest.Validate())
	})
}

func TestManifest_Timeout(t *testing.T) {
	manifest := validManifest()
	assert.Equal(t, 10*time.Second, manifest.Timeout())

	manifest.TimeoutSeconds = 0
	assert.Equal(t, time.Duration(0), manifest.Timeout())
}

func TestManifest_MatchesTrigger(t *testing.T) {
	manifest := validManifest()

	t.Run("Success_PersianFragment", func(t *testing.T) {
		assert.True(t, manifest.MatchesTrigger("امروز هوا چطوره؟"))
	})

	t.Run("Success_CaseInsensitive", func(t *testing.T) {
		assert.True(t, manifest.MatchesTrigger("What is the WEATHER like"))
	})

	t.Run("False_NoFragment", func(t *testing.T) {
		assert.False(t, manifest.MatchesTrigger("چراغ را روشن کن"))
	})

	t.Run("False_NoTriggers", func(t *testing.T) {
		silent := validManifest()
		silent.Triggers = nil

		assert.False(t, silent.MatchesTrigger("weather"))
	})

	t.Run("False_EmptyTriggerNeverMatches", func(t *testing.T) {
		odd := validManifest()
		odd.Triggers = []string{""}

		assert.False(t, odd.MatchesTrigger("anything"))
	})
}

func TestManifest_ExpandCommand(t *testing.T) {
	manifest := validManifest()

	t.Run("Success_SubstitutesStringArgs", func(t *testing.T) {
		argv := manifest.ExpandCommand(map[string]any{"text": "salam"})

		assert.Equal(t, []string{"espeak", "-v", "fa", "salam"}, argv)
	})

	t.Run("Success_MissingArgExpandsEmpty", func(t *testing.T) {
		argv := manifest.ExpandCommand(nil)

		assert.Equal(t, []string{"espeak", "-v", "fa", ""}, argv)
	})

	t.Run("Success_NonStringArgExpandsEmpty", func(t *testing.T) {
		argv := manifest.ExpandCommand(map[string]any{"text": 42})

		assert.Equal(t, []string{"espeak", "-v", "fa", ""}, argv)
	})

	t.Run("Success_MultiplePlaceholdersInOneElement", func(t *testing.T) {
		greeter := validManifest()
		greeter.Command = []string{"espeak", "${greeting} ${name}"}

		argv := greeter.ExpandCommand(map[string]any{"greeting": "dorood", "name": "sara"})

		assert.Equal(t, []string{"espeak", "dorood sara"}, argv)
	})

	t.Run("Success_NoPlaceholdersUnchanged", func(t *testing.T) {
		fixed := validManifest()
		fixed.Command = []string{"date", "+%H:%M"}

		assert.Equal(t, []string{"date", "+%H:%M"}, fixed.ExpandCommand(map[string]any{"unused": "x"}))
	})
}

func TestRequest_Allows(t *testing.T) {
	t.Run("NilSetAllowsAll", func(t *testing.T) {
		req := Request{}
		assert.True(t, req.Allows("network.weather"))
	})

	t.Run("EmptySetDeniesAll", func(t *testing.T) {
		req := Request{Permissions: []string{}}
		assert.False(t, req.Allows("network.weather"))
	})

	t.Run("NamedPermission", func(t *testing.T) {
		req := Request{Permissions: []string{"speak", "network.weather"}}
		assert.True(t, req.Allows("network.weather"))
		assert.False(t, req.Allows("smart_home.lights"))
	})

	t.Run("Wildcard", func(t *testing.T) {
		req := Request{Permissions: []string{"*"}}
		assert.True(t, req.Allows("anything.at.all"))
	})
}
