package webchat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlabs/chatdrive/pkg/webchat"
)

type fakeConversation struct {
	reply   string
	sendErr error
	sent    []string
	ended   int
	closed  int
}

func (f *fakeConversation) SendMessage(ctx context.Context, message string) (string, error) {
	f.sent = append(f.sent, message)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.reply, nil
}

func (f *fakeConversation) EndConversation() {
	f.ended++
}

func (f *fakeConversation) Close() {
	f.closed++
}

// newTestManager returns a manager whose engines are fakes, plus the map of
// fakes created so far keyed by site name.
func newTestManager() (*ConversationManager, map[string]*fakeConversation) {
	fakes := make(map[string]*fakeConversation)
	m := NewConversationManager(webchat.Options{})
	m.newEngine = func(profile *webchat.Profile, opts webchat.Options) conversation {
		f := &fakeConversation{reply: "reply from " + profile.Name}
		fakes[profile.Name] = f
		return f
	}
	return m, fakes
}

func TestManagerReusesEngine(t *testing.T) {
	m, fakes := newTestManager()

	first, err := m.Engine("googleai")
	require.NoError(t, err)
	second, err := m.Engine("googleai")
	require.NoError(t, err)

	assert.Same(t, first.(*fakeConversation), second.(*fakeConversation))
	assert.Len(t, fakes, 1)
}

func TestManagerUnknownSite(t *testing.T) {
	m, _ := newTestManager()
	_, err := m.Engine("nope")
	assert.ErrorContains(t, err, "unknown site")
}

func TestManagerShutdown(t *testing.T) {
	m, fakes := newTestManager()
	_, err := m.Engine("googleai")
	require.NoError(t, err)
	_, err = m.Engine("ernie")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"googleai", "ernie"}, m.ActiveSites())

	m.Shutdown()
	assert.Empty(t, m.ActiveSites())
	assert.Equal(t, 1, fakes["googleai"].closed)
	assert.Equal(t, 1, fakes["ernie"].closed)
}

func TestSendMessageTool(t *testing.T) {
	m, fakes := newTestManager()
	tool := NewSendMessageTool(m, "googleai")

	result, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><message>hello</message></arguments>`))
	require.NoError(t, err)

	assert.Equal(t, "reply from googleai", result)
	assert.Equal(t, []string{"hello"}, fakes["googleai"].sent)
}

func TestSendMessageToolSiteOverride(t *testing.T) {
	m, fakes := newTestManager()
	tool := NewSendMessageTool(m, "googleai")

	result, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><message>hi</message><site>ernie</site></arguments>`))
	require.NoError(t, err)

	assert.Equal(t, "reply from ernie", result)
	assert.NotContains(t, fakes, "googleai")
}

func TestSendMessageToolTurnFailureIsText(t *testing.T) {
	m, fakes := newTestManager()
	tool := NewSendMessageTool(m, "googleai")

	// Prime the engine, then make the next turn fail.
	_, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><message>first</message></arguments>`))
	require.NoError(t, err)
	fakes["googleai"].sendErr = errors.New("page navigation failed")

	result, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><message>second</message></arguments>`))
	require.NoError(t, err)
	assert.Equal(t, "Error: page navigation failed", result)
}

func TestSendMessageToolRequiresMessage(t *testing.T) {
	m, _ := newTestManager()
	tool := NewSendMessageTool(m, "googleai")

	_, _, err := tool.Execute(context.Background(), []byte(`<arguments></arguments>`))
	assert.ErrorContains(t, err, "message is required")
}

func TestEndConversationTool(t *testing.T) {
	m, fakes := newTestManager()
	tool := NewEndConversationTool(m, "googleai")

	result, _, err := tool.Execute(context.Background(), []byte(`<arguments></arguments>`))
	require.NoError(t, err)
	assert.Equal(t, endConfirmation, result)
	assert.Equal(t, 1, fakes["googleai"].ended)
}

func TestEndConversationToolSiteOverride(t *testing.T) {
	m, fakes := newTestManager()
	tool := NewEndConversationTool(m, "googleai")

	result, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><site>ernie</site></arguments>`))
	require.NoError(t, err)
	assert.Equal(t, endConfirmation, result)
	assert.Equal(t, 1, fakes["ernie"].ended)
	assert.NotContains(t, fakes, "googleai")
}

func TestListSitesTool(t *testing.T) {
	m, _ := newTestManager()
	_, err := m.Engine("ernie")
	require.NoError(t, err)

	tool := NewListSitesTool(m)
	result, _, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, result, "googleai")
	assert.Contains(t, result, "ernie")
	assert.Contains(t, result, "(active conversation)")
}

func TestRegistryRegistersOnce(t *testing.T) {
	m, _ := newTestManager()
	r := NewToolRegistry(m, "googleai")

	first := r.RegisterTools()
	second := r.RegisterTools()

	assert.Len(t, first, 3)
	assert.Equal(t, first, second)

	names := make([]string, 0, len(first))
	for _, tool := range first {
		names = append(names, tool.Name())
	}
	assert.ElementsMatch(t, names, []string{
		"webchat_send_message",
		"webchat_end_conversation",
		"webchat_list_sites",
	})
}
