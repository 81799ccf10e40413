package enums

import "fmt"

// VerificationChannel names a contact point the checkout flow can verify.
type VerificationChannel string

const (
	VerificationChannelEmail VerificationChannel = "email"
	VerificationChannelPhone VerificationChannel = "phone"
)

var validVerificationChannels = []VerificationChannel{
	VerificationChannelEmail,
	VerificationChannelPhone,
}

// String implements fmt.Stringer.
func (c VerificationChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known VerificationChannel.
func (c VerificationChannel) IsValid() bool {
	for _, candidate := range validVerificationChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseVerificationChannel converts raw input into a VerificationChannel.
func ParseVerificationChannel(value string) (VerificationChannel, error) {
	for _, candidate := range validVerificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification channel %q", value)
}
