package whatsapp

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLink(t *testing.T) {
	link, err := SendLink("+91 98765-43210", "Hi there & welcome")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/919876543210?text=Hi%20there%20%26%20welcome", link)

	_, err = SendLink("", "hello")
	assert.ErrorIs(t, err, ErrNoContactNumber)

	_, err = SendLink("n/a", "hello")
	assert.ErrorIs(t, err, ErrNoContactNumber)
}

func TestShareLink_RoundTripsMessage(t *testing.T) {
	msg := StudentDetailsMessage("STU-0042", "Rahul Sharma", "", "active")
	link := ShareLink(msg)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/", u.Path)
	assert.Equal(t, msg, u.Query().Get("text"))
	assert.Equal(t, "Student Details:\nID: STU-0042\nName: Rahul Sharma\nBatch: N/A\nStatus: active", msg)
}

func TestStudentIDMessage(t *testing.T) {
	assert.Equal(t,
		"Hello! Your unique student ID is: STU-0042\n\nStudent Name: Rahul\n\nPlease keep this ID safe for future reference.",
		StudentIDMessage("STU-0042", "Rahul"),
	)
}

func TestEncode_MatchesEncodeURIComponent(t *testing.T) {
	assert.Equal(t, "Hello!%20(it's)%20*fine*%20~ok", encode("Hello! (it's) *fine* ~ok"))
	assert.Equal(t, "a%2Bb%3Dc%2Fd%3F%0A", encode("a+b=c/d?\n"))
	assert.Equal(t, "%E2%82%B9500", encode("₹500"))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "15551234567", Digits("+1 (555) 123-4567"))
	assert.Empty(t, Digits("call me"))
}
