package webchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *Profile {
	return &Profile{
		Name:             "testsite",
		URL:              "https://chat.example.com/",
		LivenessPattern:  "*chat.example.com*",
		InputSelectors:   []string{"textarea"},
		Submit:           SubmitKey,
		ResponseSelector: ".reply",
	}
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, validProfile().Validate())

	p := validProfile()
	p.Name = ""
	assert.ErrorContains(t, p.Validate(), "name is required")

	p = validProfile()
	p.URL = ""
	assert.ErrorContains(t, p.Validate(), "url is required")

	p = validProfile()
	p.InputSelectors = nil
	assert.ErrorContains(t, p.Validate(), "input selector")

	p = validProfile()
	p.ResponseSelector = ""
	assert.ErrorContains(t, p.Validate(), "response selector")

	p = validProfile()
	p.Submit = "telepathy"
	assert.ErrorContains(t, p.Validate(), "invalid submit mode")

	p = validProfile()
	p.Submit = SubmitButton
	assert.ErrorContains(t, p.Validate(), "submit selectors")

	p = validProfile()
	p.LivenessPattern = ""
	assert.ErrorContains(t, p.Validate(), "liveness pattern")
}

func TestProfileMatchesURL(t *testing.T) {
	p := validProfile()
	require.NoError(t, p.Validate())

	assert.True(t, p.MatchesURL("https://chat.example.com/thread/42"))
	assert.False(t, p.MatchesURL("https://elsewhere.example.com/"))
}

func TestProfileWaitSelector(t *testing.T) {
	p := validProfile()
	assert.Equal(t, "textarea", p.WaitSelector())

	p.ReadySelector = "#composer"
	assert.Equal(t, "#composer", p.WaitSelector())
}

func TestProfileDoneScope(t *testing.T) {
	p := validProfile()
	assert.Equal(t, p.ResponseSelector, p.doneScope())

	p.ContainerSelector = ".turn"
	assert.Equal(t, ".turn", p.doneScope())
}

func TestRegistryBuiltins(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "googleai")
	assert.Contains(t, names, "ernie")

	google, ok := Lookup("googleai")
	require.True(t, ok)
	assert.Equal(t, SubmitButton, google.Submit)
	assert.True(t, google.ExtractHTML)
	assert.True(t, google.DoneInLastUnit)
	assert.True(t, google.MatchesURL("https://www.google.com/search?udm=50&q=hi"))

	ernie, ok := Lookup("ernie")
	require.True(t, ok)
	assert.Equal(t, SubmitKey, ernie.Submit)
	assert.NotEmpty(t, ernie.BusySelector)
	assert.True(t, ernie.MatchesURL("https://chat.baidu.com/search?extra=1"))

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	p := validProfile()
	p.Name = "dupecheck"
	require.NoError(t, Register(p))

	again := validProfile()
	again.Name = "dupecheck"
	assert.ErrorContains(t, Register(again), "already registered")
}
