package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voicestack/beliefgraph/internal/domain"
)

// stripWrapping removes code fences and surrounding prose so that a JSON
// object or array embedded in the completion can be parsed. Models sometimes
// wrap payloads despite being told not to.
func stripWrapping(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// Payload possibly buried in prose: slice from the first opener to its
	// matching last closer.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	start := objStart
	end := strings.LastIndex(s, "}")
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start = arrStart
		end = strings.LastIndex(s, "]")
	}
	if start == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}

// parsePayload decodes a gateway completion into v. A parse failure is a
// malformed-output failure, never a crash or an untyped blob.
func parsePayload(raw string, v any) error {
	if err := json.Unmarshal([]byte(stripWrapping(raw)), v); err != nil {
		return fmt.Errorf("parse gateway payload: %v (raw: %s): %w", err, truncate(raw, 200), domain.ErrMalformedOutput)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func gatewayErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrGatewayUnavailable)
}

func malformedErr(op, detail string) error {
	return fmt.Errorf("%s: %s: %w", op, detail, domain.ErrMalformedOutput)
}

func audienceLine(a *domain.Audience) string {
	if a == nil {
		return "unspecified"
	}
	return fmt.Sprintf("role: %s, pain: %s", a.Role, a.Pain)
}
