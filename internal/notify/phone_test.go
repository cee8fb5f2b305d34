// internal/notify/phone_test.go
package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ecuador with trunk zero", "+593-098-284-0685", "593982840685"},
		{"ecuador already normalized", "593982840685", "593982840685"},
		{"mexico with spaces", "+52 155 1234 5678", "5215512345678"},
		{"colombia", "+57 3001234567", "573001234567"},
		{"spain", "+34 612 345 678", "34612345678"},
		{"us", "+1 555 123 4567", "15551234567"},
		{"guatemala", "+502 5123 4567", "50251234567"},
		{"venezuela", "+58 0412 1234567", "584121234567"},
		{"no country code passes through", "0991234567", "0991234567"},
		{"empty", "", ""},
		{"formatting only", "+- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}
