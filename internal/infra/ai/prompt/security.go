package prompt

import "fmt"

// SystemPrompt enumerates the vulnerability classes of interest and pins the
// model to the exact JSON shape the pipeline parses. Anything else is treated
// by the caller as a parse failure.
func SystemPrompt() string {
	return `You are a security code reviewer. Analyze the provided source code for vulnerabilities in these categories:
- injection (SQL, command, code)
- cross-site scripting (XSS)
- cross-site request forgery (CSRF)
- broken authentication or authorization
- missing or weak input validation
- vulnerable or risky dependencies
- hardcoded secrets or credential leakage
- insecure file operations
- insecure API endpoints
- missing security headers

Respond with ONLY a JSON object of exactly this shape, no prose:
{"vulnerabilities": [{"type": string, "severity": "low"|"medium"|"high"|"critical", "line": number or string, "description": string, "suggestion": string}]}

If the code has no vulnerabilities, respond with {"vulnerabilities": []}.`
}

// UserPrompt wraps one file's content for review.
func UserPrompt(sourceText string) string {
	return fmt.Sprintf("Review the following source code:\n\n```\n%s\n```", sourceText)
}
