package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet_Defaults(t *testing.T) {
	build := Get()
	require.Equal(t, "dev", build.Version)
	require.Equal(t, "unknown", build.Commit)
	require.Equal(t, "unknown", build.Date)
	require.Equal(t, build.Version, GetVersion())
}

func TestBuild_String(t *testing.T) {
	build := Build{Version: "v1.4.0", Commit: "abc123", Date: "2024-12-20"}
	require.Equal(t, "version=v1.4.0 commit=abc123 date=2024-12-20", build.String())
}

func TestUserAgent(t *testing.T) {
	require.Equal(t, "orderline/dev", UserAgent("orderline"))
}
