package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UnknownFallsBackToFree(t *testing.T) {
	tests := []string{"", "gold", "FREE", "admin", "développeur"}

	for _, label := range tests {
		t.Run(label, func(t *testing.T) {
			cfg := Resolve(label)
			assert.Equal(t, TierFree, cfg.Tier)
			assert.Equal(t, 10, cfg.MemoryWindow)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	for _, label := range []string{"free", "premium", "developer", "master", "candidato", "lider", "votante", "publicidad"} {
		a := Resolve(label)
		b := Resolve(label)
		assert.Equal(t, a, b, "resolve must be deterministic for %s", label)
	}
}

func TestResolve_DeveloperUnbounded(t *testing.T) {
	cfg := Resolve("developer")

	assert.True(t, cfg.DailyRequests.IsUnbounded())
	assert.True(t, cfg.MonthlyTokens.IsUnbounded())
	assert.True(t, cfg.MaxWorkflows.IsUnbounded())
	assert.True(t, cfg.RequiresRemote)

	// Unbounded always has room, no matter how large the count.
	assert.True(t, cfg.DailyRequests.Allows(1<<40))
}

func TestResolve_FreeLimits(t *testing.T) {
	cfg := Resolve("free")

	assert.False(t, cfg.DailyRequests.Allows(100))
	assert.True(t, cfg.DailyRequests.Allows(99))
	assert.False(t, cfg.RealTimeMonitoring)
	assert.False(t, cfg.RequiresRemote)
}

func TestResolve_ToolSubsets(t *testing.T) {
	tests := []struct {
		tier  string
		has   []string
		lacks []string
	}{
		{
			tier:  "free",
			has:   []string{ToolSentimentAnalyzer, ToolCampaignAdvisor},
			lacks: []string{ToolCreateCandidate, ToolRunSystemAudit, ToolUpdateColorPalette},
		},
		{
			tier:  "master",
			has:   []string{ToolCreateCandidate, ToolCreateLeader, ToolCreateVoter, ToolCreatePublicidad, ToolUpdateColorPalette, ToolAddDataToNetwork},
			lacks: []string{ToolCreateMaster, ToolRunSystemAudit},
		},
		{
			tier:  "publicidad",
			has:   []string{ToolCreateAdCopy},
			lacks: []string{ToolCreateCandidate},
		},
		{
			tier:  "candidato",
			has:   []string{ToolViewCampaignStatus, ToolGetMapMarkers},
			lacks: []string{ToolUpdateColorPalette, ToolViewTeamStructure},
		},
		{
			tier:  "lider",
			has:   []string{ToolViewTeamStructure, ToolGetMapMarkers, ToolConfigureWhatsApp},
			lacks: []string{ToolCreateCandidate},
		},
		{
			tier: "developer",
			has: []string{
				ToolCreateMaster, ToolRunSystemAudit, ToolGetAllMapMarkers,
				ToolCreateCandidate, ToolCreateAdCopy, ToolViewCampaignStatus,
				ToolViewTeamStructure, ToolConfigureWhatsApp,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			cfg := Resolve(tt.tier)
			for _, name := range tt.has {
				assert.True(t, cfg.HasTool(name), "%s should have %s", tt.tier, name)
			}
			for _, name := range tt.lacks {
				assert.False(t, cfg.HasTool(name), "%s should not have %s", tt.tier, name)
			}
		})
	}
}

func TestResolve_ToolSubsetHasNoDuplicates(t *testing.T) {
	cfg := Resolve("developer")

	seen := make(map[string]int)
	for _, name := range cfg.Tools {
		seen[name]++
	}
	for name, count := range seen {
		require.Equal(t, 1, count, "tool %s appears %d times", name, count)
	}
}

func TestLimit_Remaining(t *testing.T) {
	l := Bounded(10)

	left, ok := l.Remaining(4)
	require.True(t, ok)
	assert.Equal(t, 6, left)

	left, ok = l.Remaining(15)
	require.True(t, ok)
	assert.Equal(t, 0, left)

	_, ok = Unbounded().Remaining(15)
	assert.False(t, ok)
}

func TestWelcomeMessages(t *testing.T) {
	assert.Contains(t, Resolve("developer").Welcome, "Root")
	assert.Contains(t, Resolve("master").Welcome, "Master")
	assert.Contains(t, Resolve("free").Welcome, "Comando Central")
}
