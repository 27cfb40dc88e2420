package curriculum

import (
	_ "embed"
	"fmt"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the curriculum built into the binary. It is used by the
// seed command when no curriculum file is configured.
func Default() (*Curriculum, error) {
	c, err := ParseYAML(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in curriculum: %w", err)
	}
	return c, nil
}
