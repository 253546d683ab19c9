package lore_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worldlore/lorekeeper/internal/lore"
	"github.com/worldlore/lorekeeper/internal/model"
)

func section(title, content string) model.Section {
	return model.Section{Title: title, Level: 1, Content: content, Metadata: map[string]string{}}
}

func TestBuildAssignsIDsAndSources(t *testing.T) {
	canon := []model.Section{
		section("History", "The old wars raged."),
		section("Factions", "The syndicates compete for territory."),
	}
	proposals := []model.Proposal{
		{
			Title:    "Add mining guilds",
			State:    "open",
			PRNumber: 42,
			Date:     "2024-05-01T00:00:00Z",
			Sections: []model.Section{section("Mining Guilds", "Guilds control the drills.")},
		},
	}

	idx := lore.Build(canon, proposals)
	require.Equal(t, []string{"canon-0", "canon-1", "proposed-42-0"}, idx.Keys())

	s, ok := idx.Get("proposed-42-0")
	require.True(t, ok)
	require.Equal(t, "proposed-42", s.Source)
	require.Equal(t, "Add mining guilds", s.Metadata["prtitle"])
	require.Equal(t, "42", s.Metadata["prnumber"])
	require.Equal(t, "2024-05-01T00:00:00Z", s.Metadata["date"])
}

func TestBuildSuppressesDuplicateTitles(t *testing.T) {
	canon := []model.Section{section("History", "The old wars raged.")}
	proposals := []model.Proposal{
		{
			Title:    "Rewrite history",
			PRNumber: 7,
			Sections: []model.Section{
				section("history ", "A different account of the wars."),
				section("Aftermath", "What came after the wars."),
			},
		},
	}

	idx := lore.Build(canon, proposals)
	require.Equal(t, []string{"canon-0", "proposed-7-1"}, idx.Keys())
	for _, s := range idx.Sections() {
		if s.Source != "canon" {
			require.NotEqual(t, "history", strings.ToLower(strings.TrimSpace(s.Title)))
		}
	}
}

func TestBuildProposalMetadataTakesPrecedence(t *testing.T) {
	proposals := []model.Proposal{
		{
			Title:    "Proposal title wins",
			PRNumber: 9,
			Date:     "2024-06-01",
			Sections: []model.Section{{
				Title:    "New Section",
				Level:    1,
				Content:  "body",
				Metadata: map[string]string{"date": "1999-01-01", "author": "kept"},
			}},
		},
	}

	idx := lore.Build(nil, proposals)
	s, ok := idx.Get("proposed-9-0")
	require.True(t, ok)
	require.Equal(t, "2024-06-01", s.Metadata["date"])
	require.Equal(t, "kept", s.Metadata["author"])
}

func TestBuildTagProfile(t *testing.T) {
	content := "Thunder thunder thunder. Crystal crystal. Drills. An it of to."
	idx := lore.Build([]model.Section{section("Storms", content)}, nil)

	s, _ := idx.Get("canon-0")
	require.NotEmpty(t, s.Tags)
	require.LessOrEqual(t, len(s.Tags), 8)
	require.Equal(t, "thunder", s.Tags[0])
	require.Equal(t, 3, s.TokenCounts["thunder"])
	require.NotContains(t, s.TokenCounts, "an")
	require.NotContains(t, s.TokenCounts, "it")
}

func TestBuildTaggingIsDeterministic(t *testing.T) {
	canon := []model.Section{{
		Title:    "Echoes",
		Level:    1,
		Content:  "alpha beta gamma delta alpha beta gamma delta epsilon zeta",
		Metadata: map[string]string{"era": "third", "author": "kavian"},
	}}

	first := lore.Build(canon, nil)
	for i := 0; i < 20; i++ {
		again := lore.Build(canon, nil)
		a, _ := first.Get("canon-0")
		b, _ := again.Get("canon-0")
		require.Equal(t, a.Tags, b.Tags)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	paragraphs := []string{
		strings.Repeat("alpha ", 80),
		strings.Repeat("beta ", 80),
		strings.Repeat("gamma ", 80),
		"short tail",
	}
	content := strings.Join(paragraphs, "\n\n")

	idx := lore.Build([]model.Section{section("Long", content)}, nil)
	s, _ := idx.Get("canon-0")
	require.Greater(t, len(s.Chunks), 1)
	require.Equal(t, content, strings.Join(s.Chunks, "\n\n"))
}

func TestChunkShortContentYieldsOneChunk(t *testing.T) {
	idx := lore.Build([]model.Section{section("Tiny", "just a line")}, nil)
	s, _ := idx.Get("canon-0")
	require.Equal(t, []string{"just a line"}, s.Chunks)
}
