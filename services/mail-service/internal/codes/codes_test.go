package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Code
	}{
		{
			name: "no digits",
			text: "Welcome aboard!",
			want: []Code{},
		},
		{
			name: "bare number",
			text: "Use 482913 to sign in",
			want: []Code{{Code: "482913", Kind: KindNumber, Match: "482913"}},
		},
		{
			name: "labeled code",
			text: "Your code: 1234",
			want: []Code{{Code: "1234", Kind: KindCode, Match: "code: 1234"}},
		},
		{
			name: "verification wins over after colon and number",
			text: "Verification: 55551234",
			want: []Code{{Code: "55551234", Kind: KindVerification, Match: "Verification: 55551234"}},
		},
		{
			name: "password",
			text: "temporary PASSWORD 9876",
			want: []Code{{Code: "9876", Kind: KindPassword, Match: "PASSWORD 9876"}},
		},
		{
			name: "after colon",
			text: "PIN: 2468",
			want: []Code{{Code: "2468", Kind: KindAfterColon, Match: ": 2468"}},
		},
		{
			name: "arabic label",
			text: "كود 777888",
			want: []Code{{Code: "777888", Kind: KindCode, Match: "كود 777888"}},
		},
		{
			name: "too short and too long are ignored",
			text: "ref 123 and 123456789",
			want: []Code{},
		},
		{
			name: "duplicates reported once",
			text: "code 4321, again 4321",
			want: []Code{{Code: "4321", Kind: KindCode, Match: "code 4321"}},
		},
		{
			name: "several codes",
			text: "code 1111 or backup 22222",
			want: []Code{
				{Code: "1111", Kind: KindCode, Match: "code 1111"},
				{Code: "22222", Kind: KindNumber, Match: "22222"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}
