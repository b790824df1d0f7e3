package mcp

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
)

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

// describeErr keeps the underlying error for errors.Is while giving the
// client the same wording as the terminal.
func describeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", cli.Describe(err), err)
}
