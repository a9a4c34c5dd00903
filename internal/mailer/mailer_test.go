package mailer

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/langhaus/website-backend/internal/config"
)

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage(
		"no-reply@langhaus.ch",
		"Langhaus",
		[]string{"a@example.com", "b@example.com"},
		"Ihre Anfrage",
		"<p>Hallo</p>",
	)

	assert.Contains(t, msg, "From: Langhaus <no-reply@langhaus.ch>\r\n")
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: Ihre Anfrage\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n")

	// Body comes after the blank line separating it from the headers.
	parts := strings.SplitN(msg, "\r\n\r\n", 2)
	assert.Len(t, parts, 2)
	assert.Equal(t, "<p>Hallo</p>", parts[1])
}

func TestSendWithoutCredentialsIsNoop(t *testing.T) {
	m := New(&config.Config{}, zerolog.Nop())

	assert.False(t, m.Enabled())
	assert.NoError(t, m.Send([]string{"a@example.com"}, "s", "<p>x</p>"))
}

func TestWrapIncludesLogoOnlyWhenPresent(t *testing.T) {
	withLogo := Wrap("Titel", "<p>Body</p>", "data:image/png;base64,AAA")
	assert.Contains(t, withLogo, "data:image/png;base64,AAA")
	assert.Contains(t, withLogo, "Titel")

	withoutLogo := Wrap("Titel", "<p>Body</p>", "")
	assert.NotContains(t, withoutLogo, "<img")
}
