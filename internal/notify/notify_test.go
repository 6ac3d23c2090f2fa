package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlakar/foundling/internal/model"
)

func TestRenderEmail(t *testing.T) {
	item := &model.Item{
		Title:       "iPhone 13",
		Description: "black, cracked screen",
		Location:    "Main Library",
		Status:      model.ItemStatusLost,
	}

	subject, body, err := renderEmail(EventReported, item)
	require.NoError(t, err)
	assert.Equal(t, "Lost item reported", subject)
	assert.Contains(t, body, "iPhone 13")
	assert.Contains(t, body, "black, cracked screen")
	assert.Contains(t, body, "Main Library")

	subject, body, err = renderEmail(EventFound, item)
	require.NoError(t, err)
	assert.Equal(t, "Good news: your lost item may be found", subject)
	assert.Contains(t, body, "marked as found")
}

func TestRenderEmailEscapesHTML(t *testing.T) {
	item := &model.Item{
		Title:  `<script>alert("x")</script>`,
		Status: model.ItemStatusLost,
	}

	_, body, err := renderEmail(EventReported, item)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRenderEmailUnknownEvent(t *testing.T) {
	_, _, err := renderEmail(Event("mislaid"), &model.Item{Title: "x"})
	assert.Error(t, err)
}

func TestDispatchDisabled(t *testing.T) {
	d, err := NewDispatcher(&Config{})
	require.NoError(t, err)
	require.Nil(t, d)

	// A nil dispatcher drops events without panicking.
	d.Dispatch(&model.Item{Title: "Wallet", ContactEmail: "a@x.com"}, EventFound)
	d.Wait()
}

func TestDispatchSkipsWithoutContact(t *testing.T) {
	d, err := NewDispatcher(&Config{
		SMTPHost:  "smtp.invalid",
		SMTPPort:  587,
		FromEmail: "noreply@x.com",
		Timeout:   50 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NotNil(t, d)

	d.Dispatch(&model.Item{Title: "Wallet", Status: model.ItemStatusLost}, EventReported)
	d.Wait()
}

func TestDispatchSkipsReportedFoundItem(t *testing.T) {
	d, err := NewDispatcher(&Config{
		SMTPHost:  "smtp.invalid",
		SMTPPort:  587,
		FromEmail: "noreply@x.com",
		Timeout:   50 * time.Millisecond,
	})
	require.NoError(t, err)

	// A "reported" event for an already-found item is dropped before any
	// network activity.
	d.Dispatch(&model.Item{
		Title:        "Glove",
		Status:       model.ItemStatusFound,
		ContactEmail: "a@x.com",
	}, EventReported)
	d.Wait()
}

func TestDispatchNeverBlocksOnDeliveryFailure(t *testing.T) {
	d, err := NewDispatcher(&Config{
		SMTPHost:  "127.0.0.1", // nothing listening
		SMTPPort:  1,
		FromEmail: "noreply@x.com",
		Timeout:   100 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	d.Dispatch(&model.Item{
		Title:        "Wallet",
		Status:       model.ItemStatusLost,
		ContactEmail: "a@x.com",
	}, EventReported)
	elapsed := time.Since(start)

	// Dispatch must return without waiting for the connection attempt.
	assert.Less(t, elapsed, 50*time.Millisecond)

	// The detached delivery attempt fails and is absorbed.
	d.Wait()
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate())
	assert.Error(t, (&Config{SMTPHost: "h", FromEmail: "f@x.com", SMTPPort: 0}).Validate())
	assert.NoError(t, (&Config{SMTPHost: "h", FromEmail: "f@x.com", SMTPPort: 587}).Validate())
}
