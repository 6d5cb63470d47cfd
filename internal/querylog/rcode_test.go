package querylog

import (
	"reflect"
	"testing"

	"github.com/miekg/dns"
)

func TestRCodeName(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "NOERROR"},
		{2, "SERVFAIL"},
		{3, "NXDOMAIN"},
		{5, "REFUSED"},
		{10, "NOTZONE"},
		{16, "BADSIG"},
		{23, "BADCOOKIE"},
		{11, "11"},
		{4095, "4095"},
	}
	for _, tt := range tests {
		if got := RCodeName(tt.code); got != tt.want {
			t.Fatalf("RCodeName(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestRCodeName_MatchesResolverLibrary(t *testing.T) {
	for code, name := range rcodeNames {
		if want, ok := dns.RcodeToString[code]; ok && name != want {
			t.Fatalf("RCodeName(%d) = %q, miekg/dns says %q", code, name, want)
		}
	}
}

func TestRCodeAliases_DuplicateEntry(t *testing.T) {
	if got, want := RCodeAliases(16), []string{"BADVERS", "BADSIG"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("RCodeAliases(16) = %v, want %v", got, want)
	}
	if got, want := RCodeAliases(3), []string{"NXDOMAIN"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("RCodeAliases(3) = %v, want %v", got, want)
	}
	if got := RCodeAliases(99); got != nil {
		t.Fatalf("RCodeAliases(99) = %v, want nil", got)
	}
	if got, want := AmbiguousRCodes(), []int{16}; !reflect.DeepEqual(got, want) {
		t.Fatalf("AmbiguousRCodes() = %v, want %v", got, want)
	}
}
