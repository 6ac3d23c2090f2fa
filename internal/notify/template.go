package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/mlakar/foundling/internal/model"
)

// Email bodies share one layout: black header bar, item details box,
// next-steps list.
const emailLayout = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin: 0; padding: 0; font-family: Arial, Helvetica, sans-serif; background-color: #f5f5f5;">
  <table role="presentation" style="width: 100%; border-collapse: collapse;">
    <tr><td align="center" style="padding: 40px 0;">
      <table role="presentation" style="width: 600px; border-collapse: collapse; background-color: #ffffff;">
        <tr><td style="background-color: #000000; padding: 30px; text-align: center;">
          <h1 style="margin: 0; color: #ffffff; font-size: 28px;">{{.Heading}}</h1>
        </td></tr>
        <tr><td style="padding: 40px 30px;">
          <p style="color: #333333; font-size: 16px; line-height: 1.6;">{{.Intro}}</p>
          <div style="background-color: #f9f9f9; border-left: 4px solid #000000; padding: 20px; margin: 25px 0;">
            <h2 style="margin: 0 0 15px 0; color: #000000; font-size: 18px;">Item Details</h2>
            <table style="width: 100%; border-collapse: collapse; color: #333333; font-size: 14px;">
              <tr><td style="padding: 8px 0; color: #666666; font-weight: bold; width: 120px;">Title:</td><td>{{.Item.Title}}</td></tr>
              {{if .Item.Description}}<tr><td style="padding: 8px 0; color: #666666; font-weight: bold;">Description:</td><td>{{.Item.Description}}</td></tr>{{end}}
              {{if .Item.Location}}<tr><td style="padding: 8px 0; color: #666666; font-weight: bold;">Location:</td><td>{{.Item.Location}}</td></tr>{{end}}
              {{if .Item.Category}}<tr><td style="padding: 8px 0; color: #666666; font-weight: bold;">Category:</td><td>{{.Item.Category}}</td></tr>{{end}}
            </table>
          </div>
          <p style="color: #333333; font-size: 16px; line-height: 1.6;">{{.Outro}}</p>
        </td></tr>
        <tr><td style="background-color: #f0f0f0; padding: 20px 30px; text-align: center; color: #999999; font-size: 12px;">
          This is an automated message from the lost &amp; found service.
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

var emailTemplate = template.Must(template.New("email").Parse(emailLayout))

type emailData struct {
	Heading string
	Intro   string
	Outro   string
	Item    *model.Item
}

// renderEmail produces the subject and HTML body for an event.
func renderEmail(event Event, item *model.Item) (subject, body string, err error) {
	var data emailData
	switch event {
	case EventReported:
		subject = "Lost item reported"
		data = emailData{
			Heading: "Lost Item Reported",
			Intro:   "We have recorded your lost item report. You will be notified as soon as there is an update.",
			Outro:   "We'll email you immediately if a matching item turns up. You can also check for updates anytime in the app.",
			Item:    item,
		}
	case EventFound:
		subject = "Good news: your lost item may be found"
		data = emailData{
			Heading: "Item Found",
			Intro:   "An item matching your report was marked as found.",
			Outro:   "Please check the app for details on how to collect it.",
			Item:    item,
		}
	default:
		return "", "", fmt.Errorf("unknown notification event %q", event)
	}

	var buf strings.Builder
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("rendering email template: %w", err)
	}
	return subject, buf.String(), nil
}
