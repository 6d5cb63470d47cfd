package querylog

import "strconv"

type rcodeEntry struct {
	code int
	name string
}

// rcodeTable is the response code table in its published order. Code 16 is
// listed twice (BADVERS, then BADSIG); lookups resolve to the later entry.
// RCodeAliases exposes every name listed for a code.
var rcodeTable = []rcodeEntry{
	{0, "NOERROR"},
	{1, "FORMERR"},
	{2, "SERVFAIL"},
	{3, "NXDOMAIN"},
	{4, "NOTIMP"},
	{5, "REFUSED"},
	{6, "YXDOMAIN"},
	{7, "YXRRSET"},
	{8, "NXRRSET"},
	{9, "NOTAUTH"},
	{10, "NOTZONE"},
	{16, "BADVERS"},
	{16, "BADSIG"},
	{17, "BADKEY"},
	{18, "BADTIME"},
	{19, "BADMODE"},
	{20, "BADNAME"},
	{21, "BADALG"},
	{22, "BADTRUNC"},
	{23, "BADCOOKIE"},
}

var rcodeNames = func() map[int]string {
	m := make(map[int]string, len(rcodeTable))
	for _, e := range rcodeTable {
		m[e.code] = e.name
	}
	return m
}()

// RCodeName returns the mnemonic for code, or its decimal form when the
// code is not in the table.
func RCodeName(code int) string {
	if name, ok := rcodeNames[code]; ok {
		return name
	}
	return strconv.Itoa(code)
}

// RCodeAliases lists every name the table carries for code, in table order.
func RCodeAliases(code int) []string {
	var out []string
	for _, e := range rcodeTable {
		if e.code == code {
			out = append(out, e.name)
		}
	}
	return out
}

// AmbiguousRCodes returns the codes that appear more than once in the table.
func AmbiguousRCodes() []int {
	seen := make(map[int]int, len(rcodeTable))
	var out []int
	for _, e := range rcodeTable {
		seen[e.code]++
		if seen[e.code] == 2 {
			out = append(out, e.code)
		}
	}
	return out
}
