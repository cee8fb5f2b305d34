// internal/notify/phone.go
package notify

import "strings"

// countryCodes are the dialing prefixes the gateway serves, checked in this
// order. Where prefixes overlap the longer code comes first (593 before 58).
var countryCodes = []string{
	"593", "52", "57", "34", "1", "51", "56", "54",
	"502", "503", "504", "505", "506", "507", "809", "58",
}

// NormalizePhone converts a user-entered phone number into the bare digits
// the messaging gateway expects: country code followed by the national
// number without its leading trunk zero. "+593-098-284-0685" becomes
// "593982840685". Numbers without a recognized country code pass through
// with only formatting characters removed.
func NormalizePhone(raw string) string {
	cleaned := strings.NewReplacer("+", "", "-", "", " ", "").Replace(raw)
	if cleaned == "" {
		return ""
	}

	for _, code := range countryCodes {
		if strings.HasPrefix(cleaned, code) {
			national := cleaned[len(code):]
			national = strings.TrimPrefix(national, "0")
			return code + national
		}
	}

	return cleaned
}
