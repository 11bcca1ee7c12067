package version_test

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pqhint/internal/version"
)

func TestShort(t *testing.T) {
	assert.NotEmpty(t, version.Short())
}

func TestShortPrefersLdflags(t *testing.T) {
	saved := version.Version
	t.Cleanup(func() { version.Version = saved })

	version.Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", version.Short())
}

func TestInfoFormat(t *testing.T) {
	lines := strings.Split(version.Info(), "\n")
	require.Len(t, lines, 5)

	expectedPrefixes := []string{"pqhint ", "Commit:", "Built:", "Go:", "OS/Arch:"}
	for i, prefix := range expectedPrefixes {
		assert.True(t, strings.HasPrefix(lines[i], prefix), "line %d: %q", i+1, lines[i])
	}

	assert.Contains(t, lines[3], runtime.Version())
	assert.Contains(t, lines[4], runtime.GOOS+"/"+runtime.GOARCH)
}

func TestInfoIncludesBuildMetadata(t *testing.T) {
	info := version.Info()

	assert.Contains(t, info, fmt.Sprintf("pqhint %s", version.Short()))
	assert.Contains(t, info, fmt.Sprintf("Commit: %s", version.Commit))
	assert.Contains(t, info, fmt.Sprintf("Built: %s", version.Date))
}
