package bootstrap

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ClassifyConnectionError turns a dependency ping failure into an operator
// hint naming the likely cause and the env vars to check.
func ClassifyConnectionError(name string, err error, addr string) string {
	if err == nil {
		return ""
	}

	prefix := envPrefix(name)
	errStr := strings.ToLower(err.Error())

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("Connection to %s at %s timed out.\n"+
			"  Possible causes:\n"+
			"  - %s is starting up (wait and retry)\n"+
			"  - Network latency or firewall blocking the connection\n"+
			"  Remediation:\n"+
			"  - Verify network connectivity: nc -zv %s", name, addr, name, addr)
	}

	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(errStr, "connection refused") {
		return fmt.Sprintf("Connection refused by %s at %s.\n"+
			"  This usually means %s is not running.\n"+
			"  Remediation:\n"+
			"  - Start it: docker compose up -d %s\n"+
			"  - Verify %s_HOST and %s_PORT", name, addr, name, name, prefix, prefix)
	}

	if strings.Contains(errStr, "no such host") || strings.Contains(errStr, "lookup") {
		return fmt.Sprintf("Cannot resolve hostname in %s address %s.\n"+
			"  Remediation:\n"+
			"  - Verify %s_HOST\n"+
			"  - Try using IP address (127.0.0.1) instead of hostname", name, addr, prefix)
	}

	if strings.Contains(errStr, "authentication") || strings.Contains(errStr, "password") ||
		strings.Contains(errStr, "noauth") || strings.Contains(errStr, "wrongpass") {
		return fmt.Sprintf("Authentication failed for %s at %s.\n"+
			"  Remediation:\n"+
			"  - Check %s_PASSWORD", name, addr, prefix)
	}

	return fmt.Sprintf("Failed to connect to %s at %s: %v\n"+
		"  Remediation:\n"+
		"  - Ensure %s is running and accessible\n"+
		"  - Check the %s_* environment variables", name, addr, err, name, prefix)
}

// envPrefix maps a dependency name to its environment variable prefix
func envPrefix(name string) string {
	switch name {
	case "postgres":
		return "DB"
	default:
		return strings.ToUpper(name)
	}
}
