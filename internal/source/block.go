package source

import "strings"

// blockKind describes why a page came back without usable content.
type blockKind string

const (
	blockNone       blockKind = ""
	blockCloudflare blockKind = "cloudflare"
	blockCaptcha    blockKind = "captcha"
	blockJSShell    blockKind = "js_shell"
)

// detectBlock looks for anti-bot interstitials in a page body. The report
// pages are rendered server-side, so a tiny page asking for JavaScript means
// we were served a shell instead of the report.
func detectBlock(body []byte) blockKind {
	lower := strings.ToLower(string(body))

	switch {
	case strings.Contains(lower, "checking your browser"),
		strings.Contains(lower, "cf-browser-verification"),
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge"):
		return blockCloudflare
	case strings.Contains(lower, "captcha"):
		return blockCaptcha
	case len(body) < 2000 && strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript"),
		len(body) < 2000 && strings.Contains(lower, `http-equiv="refresh"`):
		return blockJSShell
	}
	return blockNone
}
