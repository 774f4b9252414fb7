// Package session provides isolated browser-like sessions for fetching
// chapter pages. A Session is a navigate-then-extract handle owned by a
// single worker; a Factory creates a fresh one with private cookie state and
// the configured identity for every worker.
//
// Two engines are available: "http" drives a hardened net/http client and
// parses pages with goquery, "chrome" drives a headless Chrome through
// chromedp for pages that need script execution.
package session
