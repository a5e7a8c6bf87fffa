package botkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Аргументы команды в виде JSON: /addsource {"name": "...", "url": "..."}
func ParseJSON[T any](src string) (T, error) {
	var args T

	if err := json.Unmarshal([]byte(strings.TrimSpace(src)), &args); err != nil {
		return args, fmt.Errorf("parse command arguments: %w", err)
	}

	return args, nil
}

// Аргумент команды как число: /deletesource 42
func ParseInt64(src string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(src), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse command argument %q: %w", src, err)
	}
	return id, nil
}
