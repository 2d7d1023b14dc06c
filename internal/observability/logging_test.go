package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogContext_Accumulates(t *testing.T) {
	ctx := context.Background()
	ctx = WithProject(ctx, "acme")
	ctx = WithVersion(ctx, "main")
	ctx = WithRefreshID(ctx, "r-1")
	ctx = WithStage(ctx, "parsing")

	lc := GetContext(ctx)
	require.Equal(t, "acme", lc.Project)
	require.Equal(t, "main", lc.Version)
	require.Equal(t, "r-1", lc.RefreshID)
	require.Equal(t, "parsing", lc.Stage)
}

func TestLogContext_OverwriteStage(t *testing.T) {
	ctx := WithStage(context.Background(), "fetching")
	ctx = WithStage(ctx, "writing")
	require.Equal(t, "writing", GetContext(ctx).Stage)
}

func TestLogContext_EmptyByDefault(t *testing.T) {
	lc := GetContext(context.Background())
	require.Empty(t, lc.Project)
	require.Empty(t, getLogAttrs(context.Background()))
}
