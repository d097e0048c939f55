// Package redact masks personal data before it reaches the logs.
package redact

import "strings"

const visibleDigits = 4

// Phone keeps a leading '+' and the last four digits of a phone number and
// masks the rest, so "+15550100" logs as "+****0100". Numbers of four
// digits or fewer are masked entirely.
func Phone(phone string) string {
	prefix := ""
	if strings.HasPrefix(phone, "+") {
		prefix, phone = "+", phone[1:]
	}
	if len(phone) <= visibleDigits {
		return prefix + strings.Repeat("*", len(phone))
	}
	cut := len(phone) - visibleDigits
	return prefix + strings.Repeat("*", cut) + phone[cut:]
}
