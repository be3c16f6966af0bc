package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

func TestPapersCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range papersCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])
}

func TestPapersListCmd_DefaultLimit(t *testing.T) {
	flag := papersListCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
}

func TestPapersListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "papers", "list", "--date", "20250101", "-n", "10")

	require.NoError(t, err)
	assert.Contains(t, out, "2501.00001")
	assert.Contains(t, out, "Title: Graph Neural Networks for Molecules")
	assert.Contains(t, out, "Category: cs.LG")
	assert.Contains(t, out, "Total: 1 papers")

	filter := paperService.(*mockPaperService).lastFilter
	assert.Equal(t, domain.PaperFilter{Date: "20250101", Limit: 10}, filter)
}

func TestPapersListCmd_Empty(t *testing.T) {
	oldService := paperService
	paperService = &mockPaperService{}
	defer func() { paperService = oldService }()

	out, err := execute(t, "papers", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No papers found.")

	out, err = execute(t, "papers", "list", "--date", "20250102")
	require.NoError(t, err)
	assert.Contains(t, out, "No papers found for 20250102")
}

func TestPapersListCmd_ServiceError(t *testing.T) {
	oldService := paperService
	paperService = &mockPaperService{err: errors.New("database locked")}
	defer func() { paperService = oldService }()

	_, err := execute(t, "papers", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list papers")
}

func TestPapersShowCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "papers", "show", "2501.00001")

	require.NoError(t, err)
	assert.Contains(t, out, "Paper: 2501.00001")
	assert.Contains(t, out, "Authors:    Ada Lovelace, Alan Turing")
	assert.Contains(t, out, "Categories: cs.LG, q-bio.BM")
	assert.Contains(t, out, "Link:       https://arxiv.org/abs/2501.00001")
	assert.Contains(t, out, "We apply graph neural networks to molecules.")
	assert.NotContains(t, out, "Embedding:")
}

func TestPapersShowCmd_NotFound(t *testing.T) {
	oldService := paperService
	paperService = &mockPaperService{err: domain.ErrNotFound}
	defer func() { paperService = oldService }()

	_, err := execute(t, "papers", "show", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPapersCmd_ServiceNotConfigured(t *testing.T) {
	oldService := paperService
	paperService = nil
	defer func() { paperService = oldService }()

	_, err := execute(t, "papers", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper service not configured")

	_, err = execute(t, "papers", "show", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper service not configured")
}
