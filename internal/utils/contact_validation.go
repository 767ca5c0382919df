package utils

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"regexp"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// IsE164 reports basic E.164 compliance.
func IsE164(number string) bool { return e164Regex.MatchString(number) }

// ValidatePhoneNumber checks E.164 syntax and, when a Twilio client is given,
// asks Lookups v2 whether the number exists. A 404 from Twilio is a plain
// "invalid"; any other Twilio failure is returned to the caller.
func ValidatePhoneNumber(ctx context.Context, number string, tw *twilio.RestClient) (bool, error) {
	if !IsE164(number) {
		return false, nil
	}
	if tw == nil {
		return true, nil
	}

	_, err := tw.LookupsV2.FetchPhoneNumber(number, &lookupsv2.FetchPhoneNumberParams{})
	if err == nil {
		return true, nil
	}
	if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
		if restErr.Status == 404 {
			return false, nil
		}
		return false, fmt.Errorf("twilio lookup failed: %d %s", restErr.Status, restErr.Error())
	}
	return false, err
}

// NewTwilioClient returns nil when credentials are absent so lookups are skipped.
func NewTwilioClient(accountSID, authToken string) *twilio.RestClient {
	if accountSID == "" || authToken == "" {
		return nil
	}
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
}

// ValidateEmail checks RFC 5322 syntax and optionally that the domain has an MX record.
func ValidateEmail(ctx context.Context, email string, checkMX bool) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 || parts[1] == "" {
		return false
	}
	if !checkMX {
		return true
	}
	mx, err := net.DefaultResolver.LookupMX(ctx, parts[1])
	return err == nil && len(mx) > 0
}
