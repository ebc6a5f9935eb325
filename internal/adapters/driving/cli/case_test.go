package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseNewCmd_OpensCase(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "case", "new", "--sender", "acme.example")

	require.NoError(t, err)
	assert.Contains(t, out, "Opened case")
}

func TestCaseAddMessageCmd_RequiresBody(t *testing.T) {
	caseID, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "case", "add-message", caseID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "message body is empty")
}

func TestCaseAddMessageCmd_AppendsToThread(t *testing.T) {
	caseID, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "case", "add-message", caseID,
		"--from", "ops@horizon-trading.dj",
		"--body", "Poids brut: 44000 kg")

	require.NoError(t, err)
	assert.Contains(t, out, "Message")
	assert.Contains(t, out, "added")
}

func TestCaseViewCmd_ShowsSummary(t *testing.T) {
	caseID, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "case", "view", caseID)

	require.NoError(t, err)
	assert.Contains(t, out, caseID)
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "new")
}

func TestCaseHistoryCmd_AfterAnalysis(t *testing.T) {
	caseID, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "analyse", caseID)
	require.NoError(t, err)

	out, err := execute(t, "case", "history", caseID)

	require.NoError(t, err)
	assert.Contains(t, out, "flow_classified")
	assert.Contains(t, out, "status_changed")
}

func TestGapsCmd_ListsOpenQuestions(t *testing.T) {
	caseID, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "analyse", caseID)
	require.NoError(t, err)

	out, err := execute(t, "gaps", caseID)

	require.NoError(t, err)
	assert.Contains(t, out, "open gaps")
	// Blocking gaps sort first.
	firstEntry := out[strings.Index(out, "[1]"):]
	assert.Contains(t, firstEntry[:strings.Index(firstEntry, "\n")], "[blocking]")
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "caseintake version")
}
