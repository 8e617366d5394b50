package llm

import (
	"fmt"
	"strings"
)

// ExtractJSON carves the outermost JSON object out of a model response.
// Models frequently wrap structured output in prose or markdown fences; the
// content between the first '{' and the last '}' is the payload.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)

	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || startIdx >= endIdx {
		return "", fmt.Errorf("no valid JSON found in response")
	}
	return response[startIdx : endIdx+1], nil
}
