package supervisor

import (
	"regexp"
	"strconv"
	"strings"
)

var localURLPattern = regexp.MustCompile(`(https?://(?:localhost|127\.0\.0\.1|0\.0\.0\.0):(\d+))`)

// urlCandidate is a local dev server URL seen in a log line.
type urlCandidate struct {
	URL      string
	Port     int
	Priority int
}

// detectURL scores a localhost URL found in line. Frontend dev servers score
// higher than API servers, so a task running both surfaces the page a human
// wants to open.
func detectURL(line string) (urlCandidate, bool) {
	matches := localURLPattern.FindStringSubmatch(line)
	if len(matches) < 3 {
		return urlCandidate{}, false
	}

	url := strings.TrimSuffix(matches[1], "/")
	url = strings.Replace(url, "://0.0.0.0:", "://localhost:", 1)
	url = strings.Replace(url, "://127.0.0.1:", "://localhost:", 1)
	port, _ := strconv.Atoi(matches[2])

	lower := strings.ToLower(line)
	priority := 50

	if containsAny(lower, "ready started server", "next dev", "▲ next") {
		priority += 100
	}
	if strings.Contains(lower, "local:") && containsAny(lower, "➜", "vite") {
		priority += 100
	}
	if containsAny(lower, "webpack compiled", "compiled successfully", "dev server running") {
		priority += 80
	}
	if containsAny(lower, "client", "frontend", "web:", "app:", "ui:") {
		priority += 60
	}

	switch port {
	case 3000, 3001, 5173, 5174, 4200:
		priority += 30
	case 8080:
		priority += 5
	}

	if containsAny(lower, "hono", "express", "fastify", "nestjs", "koa") {
		priority -= 40
	}
	if containsAny(lower, "server:", "api:", "backend:") {
		priority -= 50
	}
	if containsAny(lower, "http listening", "listening on http") &&
		!containsAny(lower, "client", "frontend", "local:") {
		priority -= 30
	}

	return urlCandidate{URL: url, Port: port, Priority: priority}, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
