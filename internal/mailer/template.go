package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	texttemplate "text/template"
	"time"

	"github.com/Varun5711/modesta/internal/qrcode"
)

const (
	Brand               = "MODESTA"
	VerificationSubject = "Welcome to MODESTA - Verify Your Email"
	SupportAddress      = "support@modesta.com"
)

type VerificationEmail struct {
	To      string
	Subject string
	Link    string
	HTML    string
	Text    string
}

type templateData struct {
	Brand   string
	Link    string
	QRCode  htmltemplate.URL
	Hours   int
	Year    int
	Support string
}

var verificationHTML = htmltemplate.Must(htmltemplate.New("verification.html").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; background-color: #f5f5f5; }
    .container { max-width: 600px; margin: 0 auto; background: #fff; }
    .header { background: #1a1a1a; color: #fff; text-align: center; padding: 32px; }
    .content { padding: 32px; }
    .button { display: inline-block; padding: 12px 28px; background: #1a1a1a; color: #fff; text-decoration: none; }
    .footer { font-size: 12px; color: #888; text-align: center; padding: 24px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Brand}}</h1>
      <p>Luxury Modest Fashion</p>
    </div>
    <div class="content">
      <h2>Welcome to {{.Brand}}!</h2>
      <p>Thank you for signing up. We're excited to have you join our community of modest fashion enthusiasts.</p>
      <p>To get started, please verify your email address by clicking the button below:</p>
      <p><a href="{{.Link}}" class="button">Verify Email Address</a></p>
      <p>Or copy and paste this link into your browser:</p>
      <p><a href="{{.Link}}">{{.Link}}</a></p>
      {{if .QRCode}}<p>Or scan this code on your phone:</p>
      <p><img src="{{.QRCode}}" alt="Verification QR code" width="200" height="200"></p>{{end}}
      <p><strong>This verification link will expire in {{.Hours}} hours.</strong></p>
      <p>If you didn't create an account with {{.Brand}}, you can safely ignore this email.</p>
    </div>
    <div class="footer">
      <p><strong>{{.Brand}}</strong> - Luxury Modest Fashion</p>
      <p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
      <p>Questions? Contact us at <a href="mailto:{{.Support}}">{{.Support}}</a></p>
    </div>
  </div>
</body>
</html>
`))

var verificationText = texttemplate.Must(texttemplate.New("verification.txt").Parse(`Welcome to {{.Brand}}!

Thank you for signing up. We're excited to have you join our community of modest fashion enthusiasts.

Please verify your email address by opening the link below:

{{.Link}}

This link will expire in {{.Hours}} hours.

If you didn't create an account with {{.Brand}}, you can safely ignore this email.

---
{{.Brand}} - Luxury Modest Fashion
(c) {{.Year}} {{.Brand}}. All rights reserved.
Questions? Contact us at {{.Support}}
`))

// Renderer builds verification messages pointing at the client app.
type Renderer struct {
	clientURL string
	ttl       time.Duration
	withQR    bool
	now       func() time.Time
}

func NewRenderer(clientURL string, ttl time.Duration) *Renderer {
	return &Renderer{
		clientURL: clientURL,
		ttl:       ttl,
		withQR:    true,
		now:       time.Now,
	}
}

// WithoutQR drops the inline QR image, keeping messages small.
func (r *Renderer) WithoutQR() *Renderer {
	r.withQR = false
	return r
}

// VerificationLink is <clientURL>/verify-email?token=<token>.
func (r *Renderer) VerificationLink(token string) string {
	return r.clientURL + "/verify-email?token=" + url.QueryEscape(token)
}

func (r *Renderer) Verification(to, token string) (*VerificationEmail, error) {
	data := templateData{
		Brand:   Brand,
		Link:    r.VerificationLink(token),
		Hours:   int(r.ttl.Hours()),
		Year:    r.now().Year(),
		Support: SupportAddress,
	}

	if r.withQR {
		uri, err := qrcode.PNGDataURI(data.Link, qrcode.DefaultSize)
		if err != nil {
			return nil, err
		}
		data.QRCode = htmltemplate.URL(uri)
	}

	var html, text bytes.Buffer
	if err := verificationHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := verificationText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}

	return &VerificationEmail{
		To:      to,
		Subject: VerificationSubject,
		Link:    data.Link,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
