package auth

import (
	"bytes"
	"html/template"

	"github.com/go-referral-api/internal/domain"
)

var otpTemplate = template.Must(template.New("otp").Parse(
	`<p>{{.Intro}}</p><p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>` +
		`<p>The code expires in 10 minutes. If you did not request it, ignore this email.</p>`))

func otpEmailBody(code, purpose string) string {
	intro := "Your OTP is:"
	if purpose == domain.OtpPurposeReset {
		intro = "Your OTP for password reset is:"
	}
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, struct{ Intro, Code string }{intro, code}); err != nil {
		return intro + " " + code
	}
	return buf.String()
}
