package ports

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Common port patterns in run commands
var portPatterns = []*regexp.Regexp{
	// --port 3000, --port=3000, -p 3000, -p=3000
	regexp.MustCompile(`(?:--port[=\s]|--PORT[=\s]|-p[=\s])(\d+)`),
	// PORT=3000
	regexp.MustCompile(`(?:PORT=)(\d+)`),
	// Java/Spring Boot: -Dserver.port=8080
	regexp.MustCompile(`-Dserver\.port=(\d+)`),
	// localhost:3000, 127.0.0.1:3000, 0.0.0.0:3000
	regexp.MustCompile(`(?:localhost|127\.0\.0\.1|0\.0\.0\.0):(\d+)`),
}

// Default ports for common dev servers, most specific first
var defaultPorts = []struct {
	command string
	port    int
}{
	{"python manage.py runserver", 8000},
	{"manage.py runserver", 8000},
	{"bundle exec rails server", 3000},
	{"rails server", 3000},
	{"mvn spring-boot:run", 8080},
	{"./gradlew bootrun", 8080},
	{"flask run", 5000},
	{"npm start", 3000},
	{"yarn start", 3000},
}

// ExtractPort returns the port a command is expected to listen on.
func ExtractPort(argv []string) (int, bool) {
	line := strings.Join(argv, " ")

	for _, pattern := range portPatterns {
		matches := pattern.FindStringSubmatch(line)
		if len(matches) < 2 {
			continue
		}
		if port, err := strconv.Atoi(matches[1]); err == nil && port > 0 && port < 65536 {
			return port, true
		}
	}

	lower := strings.ToLower(line)
	for _, d := range defaultPorts {
		if strings.Contains(lower, d.command) {
			return d.port, true
		}
	}
	return 0, false
}

// IsPortAvailable checks if a port is available for binding
func IsPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// FindAvailablePort finds the next available port starting from the given port
func FindAvailablePort(startPort int) int {
	const maxAttempts = 100
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		if port > 65535 {
			break
		}
		if IsPortAvailable(port) {
			return port
		}
	}
	return 0
}

// Owner returns the process listening on port. ok is false when the listener
// cannot be attributed, which is common without elevated privileges.
func Owner(port int) (pid int32, name string, ok bool) {
	conns, err := psnet.Connections("tcp")
	if err != nil {
		return 0, "", false
	}
	for _, c := range conns {
		if int(c.Laddr.Port) != port || c.Status != "LISTEN" || c.Pid == 0 {
			continue
		}
		name := ""
		if p, err := process.NewProcess(c.Pid); err == nil {
			name, _ = p.Name()
		}
		return c.Pid, name, true
	}
	return 0, "", false
}

// Conflict describes a port a command wants that something else holds.
type Conflict struct {
	Port      int
	PID       int32
	Process   string
	Suggested int
}

// Check reports whether the port argv would listen on is already taken.
func Check(argv []string) (Conflict, bool) {
	port, ok := ExtractPort(argv)
	if !ok || IsPortAvailable(port) {
		return Conflict{}, false
	}

	c := Conflict{Port: port, Suggested: FindAvailablePort(port + 1)}
	c.PID, c.Process, _ = Owner(port)
	return c, true
}

func (c Conflict) String() string {
	msg := fmt.Sprintf("Port %d is already in use", c.Port)
	switch {
	case c.Process != "":
		msg += fmt.Sprintf(" by %s (pid %d)", c.Process, c.PID)
	case c.PID != 0:
		msg += fmt.Sprintf(" by pid %d", c.PID)
	}
	if c.Suggested != 0 {
		msg += fmt.Sprintf("; %d is free", c.Suggested)
	}
	return msg
}
