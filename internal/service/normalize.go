package service

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeTeam equality key for team names: lower-case, letters and digits only.
// "St. Louis Blues" and "st louis blues" both become "stlouisblues". Never displayed.
func NormalizeTeam(name string) string {
	return nonAlphaNum.ReplaceAllString(strings.ToLower(name), "")
}

// sameTeam both names non-empty and equal after normalization
func sameTeam(a, b string) bool {
	na, nb := NormalizeTeam(a), NormalizeTeam(b)
	return na != "" && na == nb
}
