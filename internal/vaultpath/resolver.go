// Package vaultpath resolves filename templates to vault-relative paths.
package vaultpath

import (
	"fmt"
	"strings"
	"time"
)

// Resolve expands the date placeholders in template for the given date.
//
// Supported placeholders:
//
//	{year}   4-digit calendar year
//	{month}  2-digit month
//	{day}    2-digit day of month
//	{week}   2-digit ISO-8601 week number (Monday start, first week
//	         containing the year's first Thursday)
//	{date}   YYYY-MM-DD
//
// Unknown placeholders are left literal. Resolve is a pure function of
// (template, asOf): no I/O, no hidden state.
func Resolve(template string, asOf time.Time) string {
	_, isoWeek := asOf.ISOWeek()
	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%04d", asOf.Year()),
		"{month}", fmt.Sprintf("%02d", int(asOf.Month())),
		"{day}", fmt.Sprintf("%02d", asOf.Day()),
		"{week}", fmt.Sprintf("%02d", isoWeek),
		"{date}", asOf.Format("2006-01-02"),
	)
	return r.Replace(template)
}
