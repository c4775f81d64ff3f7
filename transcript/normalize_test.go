package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEscapedNewlines(t *testing.T) {
	require.Equal(t, "a\nb", Normalize(`a\nb`))
}

func TestNormalizeTableTagRepair(t *testing.T) {
	require.Equal(t, `<table border="1">`, Normalize(`<tableborder="1">`))
	require.Equal(t, `<tr bgcolor="red">`, Normalize(`<trbgcolor="red">`))
}

func TestNormalizeLeavesWellFormedTagsAlone(t *testing.T) {
	for _, s := range []string{"<table>", "<tr>", `<table border="1">`, "plain"} {
		require.Equal(t, s, Normalize(s))
	}
}

func TestNormalizeLeavesPrefixSharingTagsAlone(t *testing.T) {
	// Tags that merely start with <tr or <table must not be split apart.
	inputs := []string{
		`<transition name="fade">`,
		`<track src="a.vtt">`,
		`<tablespoon count="2">`,
		`<trend direction="up">`,
	}
	for _, s := range inputs {
		require.Equal(t, s, Normalize(s))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		`a\nb\nc`,
		`<tableborder="1"><trbgcolor="red">cell</tr></table>`,
		"already\nclean",
		"",
		`mixed\n<trstyle="x">`,
	}
	for _, s := range inputs {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once), "input %q", s)
	}
}
