package tooltip

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covermap/internal/catalog"
)

func TestFlag(t *testing.T) {
	assert.Equal(t, "🇯🇵", Flag("Japan", "JP"))
	assert.Equal(t, "🇯🇵", Flag("Japan", ""), "falls back to the name")
	assert.Equal(t, "🇩🇪", Flag("Whatever", "DE"), "code wins")
	assert.Empty(t, Flag("Atlantis", ""), "no guessed flag")
	assert.Empty(t, Flag("", "  "))
}

func TestContent_Metrics(t *testing.T) {
	loc := catalog.ServiceLocation{Country: "Japan", Code: "JP", Tax: "5%", Duties: "12%", LeadTime: "12H"}
	c := NewContent("Japan", loc, true)
	require.True(t, c.HasMetrics())
	assert.Equal(t, []string{
		"🇯🇵 Japan",
		"Tax:       5%",
		"Duties:    12%",
		"Lead time: 12H",
	}, c.Lines())

	n := &Node{Content: c}
	assert.Equal(t, 4, n.Lift())
}

func TestContent_Unavailable(t *testing.T) {
	c := NewContent("Atlantis", catalog.ServiceLocation{}, false)
	assert.False(t, c.HasMetrics())
	assert.Equal(t, []string{"Atlantis", Unavailable}, c.Lines())
	assert.Equal(t, 2, (&Node{Content: c}).Lift())
}

func TestOverlay_LockedCreatesNothing(t *testing.T) {
	var o Overlay
	assert.False(t, o.Show("Japan", Content{Country: "Japan"}, 3, 3, true))
	assert.Nil(t, o.Node())
	assert.Equal(t, 0, o.Count())
	assert.Empty(t, o.Tracking())
}

func TestOverlay_AtMostOneNode(t *testing.T) {
	var o Overlay
	require.True(t, o.Show("Japan", Content{Country: "Japan"}, 1, 1, false))
	require.True(t, o.Show("France", Content{Country: "France"}, 2, 2, false))
	assert.Equal(t, 1, o.Count())
	assert.Equal(t, "France", o.Tracking())

	assert.False(t, o.Move("Japan", 9, 9), "stale key is ignored")
	assert.True(t, o.Move("France", 5, 6))
	assert.Equal(t, 5, o.Node().X)
	assert.Equal(t, 6, o.Node().Y)

	o.Hide()
	assert.Equal(t, 0, o.Count())
	assert.False(t, o.Move("France", 1, 1))
}

func blank(w, h int) []string {
	lines := make([]string, h)
	for i := range lines {
		lines[i] = strings.Repeat(".", w)
	}
	return lines
}

func TestComposite(t *testing.T) {
	box := lipgloss.NewStyle()
	n := &Node{Key: "Atlantis", Content: Content{Country: "Atlantis"}, X: 20, Y: 15}
	out := Composite(blank(40, 20), n, box, 40)
	require.Len(t, out, 20)

	// two body rows, lifted two rows above the pointer
	assert.Contains(t, out[12], "Atlantis")
	assert.Contains(t, out[13], Unavailable[:10])
	assert.Equal(t, strings.Repeat(".", 40), ansi.Strip(out[11]))
	// the short title row is padded to the box width, so the map right of it survives
	assert.Equal(t, ".."+"Atlantis"+strings.Repeat(" ", len(Unavailable)-len("Atlantis"))+".", ansi.Strip(out[12]))
	for _, l := range out {
		assert.Equal(t, 40, ansi.StringWidth(l))
	}
}

func TestComposite_ClampsIntoArea(t *testing.T) {
	box := lipgloss.NewStyle()
	n := &Node{Key: "Atlantis", Content: Content{Country: "Atlantis"}, X: 0, Y: 0}
	out := Composite(blank(60, 10), n, box, 60)
	assert.True(t, strings.HasPrefix(ansi.Strip(out[0]), "Atlantis"))
	assert.True(t, strings.HasPrefix(ansi.Strip(out[1]), Unavailable))

	n.X, n.Y = 59, 9
	out = Composite(blank(60, 10), n, box, 60)
	assert.True(t, strings.HasSuffix(ansi.Strip(out[7]), Unavailable), "held above the pointer")
	assert.Equal(t, strings.Repeat(".", 60), ansi.Strip(out[9]))
}

func TestComposite_NoNode(t *testing.T) {
	in := blank(10, 3)
	assert.Equal(t, in, Composite(in, nil, lipgloss.NewStyle(), 10))
}
