package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
)

const codeEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #1f2937; background-color: #f0f7f4; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #cce3d9; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #1f6f50; margin-bottom: 15px; }
.content { padding: 30px; text-align: center; }
.code { font-size: 36px; font-weight: bold; letter-spacing: 8px; color: #1f6f50; background-color: #f1f3f5; padding: 15px 20px; border-radius: 5px; display: inline-block; margin: 20px 0; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
</style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>%s</h1></div>
    <div class="content">
      <p>%s</p>
      <div class="code">%s</div>
      <p>If you did not request this code, you can ignore this email.</p>
    </div>
    <div class="footer">&copy; %d %s</div>
  </div>
</body>
</html>`

const paymentEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #1f2937; background-color: #f0f7f4; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #cce3d9; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #1f6f50; margin-bottom: 15px; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
strong { color: #000; }
</style>
</head>
<body>
  <div class="container">
    <div class="header"><h2>Payment received</h2></div>
    <p>Hi %s,</p>
    <p>We have received your payment of <strong>%s</strong>. Room <strong>%d</strong> is now yours.</p>
    <div class="footer">&copy; %d %s</div>
  </div>
</body>
</html>`

func verificationCodeEmail(toName, toEmail, code string) Email {
	minutes := int(constants.VerificationCodeTTL.Minutes())
	intro := fmt.Sprintf("Use this code to verify your email address. It expires in %d minutes.", minutes)
	return Email{
		ToName:  toName,
		ToEmail: toEmail,
		Subject: constants.EmailSubjectVerification,
		Plain:   fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes),
		HTML:    fmt.Sprintf(codeEmailHTML, "Verify your email", intro, code, time.Now().Year(), constants.OrganizationName),
	}
}

func passwordResetEmail(toEmail, code string) Email {
	minutes := int(constants.PasswordResetCodeTTL.Minutes())
	intro := fmt.Sprintf("Use this code to reset your password. It expires in %d minutes.", minutes)
	return Email{
		ToEmail: toEmail,
		Subject: constants.EmailSubjectPasswordReset,
		Plain:   fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, minutes),
		HTML:    fmt.Sprintf(codeEmailHTML, "Reset your password", intro, code, time.Now().Year(), constants.OrganizationName),
	}
}

func paymentConfirmationEmail(toName, toEmail string, amount int64, currency string, roomNumber int) Email {
	formatted := formatAmount(amount, currency)
	return Email{
		ToName:  toName,
		ToEmail: toEmail,
		Subject: constants.EmailSubjectPaymentConfirmation,
		Plain:   fmt.Sprintf("Hi %s, we received your payment of %s. Room %d is now yours.", toName, formatted, roomNumber),
		HTML: fmt.Sprintf(paymentEmailHTML,
			html.EscapeString(toName), formatted, roomNumber, time.Now().Year(), constants.OrganizationName),
	}
}

// formatAmount renders minor units, e.g. 1250000 kes -> "KES 12500.00".
func formatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s %s%d.%02d", strings.ToUpper(currency), sign, minor/100, minor%100)
}
